package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// EvaluationRepo stores per-attempt question evaluations and screening summaries.
// Rows are insert-only; a retry writes a new attempt instead of updating.
type EvaluationRepo struct{ Pool PgxPool }

// NewEvaluationRepo constructs an EvaluationRepo with the given pool.
func NewEvaluationRepo(p PgxPool) *EvaluationRepo { return &EvaluationRepo{Pool: p} }

// SaveAttempt writes every row of one attempt in a single transaction.
func (r *EvaluationRepo) SaveAttempt(ctx domain.Context, evals []domain.QuestionEvaluation, sums []domain.TranscriptSummary) (err error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.SaveAttempt")
	defer span.End()
	span.SetAttributes(attribute.Int("evaluations.count", len(evals)), attribute.Int("summaries.count", len(sums)))

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("op=evaluation.save_attempt: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	const insEval = `INSERT INTO question_evaluations
		(id, interview_id, attempt_id, question_id, competency_id, competency_name, weight, score,
		 strengths, concerns, evidence_quotes, why_not_higher, degraded, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	for _, e := range evals {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		strengths, concerns, quotes, mErr := marshalLists(e.Strengths, e.Concerns, e.EvidenceQuotes)
		if mErr != nil {
			err = fmt.Errorf("op=evaluation.save_attempt: %w", mErr)
			return err
		}
		if _, err = tx.Exec(ctx, insEval, id, e.InterviewID, e.AttemptID, e.QuestionID, e.CompetencyID, e.CompetencyName,
			e.Weight, e.Score, strengths, concerns, quotes, e.WhyNotHigher, e.Degraded, now); err != nil {
			err = fmt.Errorf("op=evaluation.save_attempt: question %s: %w", e.QuestionID, err)
			return err
		}
	}

	const insSum = `INSERT INTO transcript_summaries (id, interview_id, attempt_id, question_id, answer, summary, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	for _, s := range sums {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err = tx.Exec(ctx, insSum, id, s.InterviewID, s.AttemptID, s.QuestionID, s.Answer, s.Summary, now); err != nil {
			err = fmt.Errorf("op=evaluation.save_attempt: summary %s: %w", s.QuestionID, err)
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("op=evaluation.save_attempt: commit: %w", err)
		return err
	}
	return nil
}

// ListQuestionEvaluations returns one attempt's rows in insertion order.
func (r *EvaluationRepo) ListQuestionEvaluations(ctx domain.Context, interviewID, attemptID string) ([]domain.QuestionEvaluation, error) {
	tracer := otel.Tracer("repo.evaluations")
	ctx, span := tracer.Start(ctx, "evaluations.ListQuestionEvaluations")
	defer span.End()
	q := `SELECT id, interview_id, attempt_id, question_id, competency_id, competency_name, weight, score,
			strengths, concerns, evidence_quotes, why_not_higher, degraded, created_at
		FROM question_evaluations WHERE interview_id=$1 AND attempt_id=$2 ORDER BY created_at ASC, id ASC`
	rows, err := r.Pool.Query(ctx, q, interviewID, attemptID)
	if err != nil {
		return nil, fmt.Errorf("op=evaluation.list: %w", err)
	}
	defer rows.Close()
	var out []domain.QuestionEvaluation
	for rows.Next() {
		var e domain.QuestionEvaluation
		var strengths, concerns, quotes []byte
		if err := rows.Scan(&e.ID, &e.InterviewID, &e.AttemptID, &e.QuestionID, &e.CompetencyID, &e.CompetencyName,
			&e.Weight, &e.Score, &strengths, &concerns, &quotes, &e.WhyNotHigher, &e.Degraded, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=evaluation.list: %w", err)
		}
		for _, l := range []struct {
			raw []byte
			dst *[]string
		}{{strengths, &e.Strengths}, {concerns, &e.Concerns}, {quotes, &e.EvidenceQuotes}} {
			if len(l.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(l.raw, l.dst); err != nil {
				return nil, fmt.Errorf("op=evaluation.list: %w", err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=evaluation.list: %w", err)
	}
	return out, nil
}

func marshalLists(strengths, concerns, quotes []string) (a, b, c []byte, err error) {
	var enc [3][]byte
	for i, l := range [][]string{strengths, concerns, quotes} {
		if l == nil {
			l = []string{}
		}
		if enc[i], err = json.Marshal(l); err != nil {
			return nil, nil, nil, err
		}
	}
	return enc[0], enc[1], enc[2], nil
}
