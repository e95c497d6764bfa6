package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/pkg/textx"
)

// MaxStoredErrorLen caps evaluation_error on the interview row.
const MaxStoredErrorLen = 1000

const interviewColumns = `id, slug, role_id, candidate_id, status, evaluation_status,
	evaluation_error, evaluation_attempt_id, transcript, transcript_turns, recording_url,
	external_call_id, score, COALESCE(recommendation, ''), structured_evaluation,
	queued_at, claimed_at, evaluated_at, created_at, updated_at`

// InterviewRepo persists interviews. Every evaluation_status change is a
// conditional UPDATE so the database arbitrates concurrent writers.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

func scanInterview(row pgx.Row) (domain.Interview, error) {
	var iv domain.Interview
	var turns, structured []byte
	var rec string
	if err := row.Scan(
		&iv.ID, &iv.Slug, &iv.RoleID, &iv.CandidateID, &iv.Status, &iv.EvaluationStatus,
		&iv.EvaluationError, &iv.EvaluationAttemptID, &iv.Transcript, &turns, &iv.RecordingURL,
		&iv.ExternalCallID, &iv.Score, &rec, &structured,
		&iv.QueuedAt, &iv.ClaimedAt, &iv.EvaluatedAt, &iv.CreatedAt, &iv.UpdatedAt,
	); err != nil {
		return domain.Interview{}, err
	}
	iv.Recommendation = domain.Recommendation(rec)
	if len(turns) > 0 {
		if err := json.Unmarshal(turns, &iv.Turns); err != nil {
			return domain.Interview{}, fmt.Errorf("decode transcript_turns: %w", err)
		}
	}
	if len(structured) > 0 {
		var se domain.StructuredEvaluation
		if err := json.Unmarshal(structured, &se); err != nil {
			return domain.Interview{}, fmt.Errorf("decode structured_evaluation: %w", err)
		}
		iv.Evaluation = &se
	}
	return iv, nil
}

// Get loads an interview by id.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()
	iv, err := scanInterview(r.Pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, fmt.Errorf("op=interview.get: %w", domain.ErrNotFound)
		}
		return domain.Interview{}, fmt.Errorf("op=interview.get: %w", err)
	}
	return iv, nil
}

// GetBySlug loads an interview by its public slug.
func (r *InterviewRepo) GetBySlug(ctx domain.Context, slug string) (domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.GetBySlug")
	defer span.End()
	iv, err := scanInterview(r.Pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE slug=$1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, fmt.Errorf("op=interview.get_by_slug: %w", domain.ErrNotFound)
		}
		return domain.Interview{}, fmt.Errorf("op=interview.get_by_slug: %w", err)
	}
	return iv, nil
}

// QueueTranscript stores the transcript and moves expected -> queued in one statement.
func (r *InterviewRepo) QueueTranscript(ctx domain.Context, id string, expected domain.EvaluationStatus, u domain.TranscriptUpdate) (bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.QueueTranscript")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", id), attribute.String("evaluation.expected", string(expected)))

	var turns []byte
	if len(u.Turns) > 0 {
		b, err := json.Marshal(u.Turns)
		if err != nil {
			return false, fmt.Errorf("op=interview.queue_transcript: %w", err)
		}
		turns = b
	}
	q := `UPDATE interviews SET transcript=$3, transcript_turns=$4, recording_url=$5, external_call_id=$6,
		status=$7, evaluation_status='queued', evaluation_error='', queued_at=$8, updated_at=$8
		WHERE id=$1 AND evaluation_status=$2`
	tag, err := r.Pool.Exec(ctx, q, id, expected, u.Transcript, turns, u.RecordingURL, u.ExternalCallID, u.Status, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=interview.queue_transcript: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Requeue moves the interview back to queued when its status is one of from.
func (r *InterviewRepo) Requeue(ctx domain.Context, id string, from []domain.EvaluationStatus) (bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Requeue")
	defer span.End()
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	q := `UPDATE interviews SET evaluation_status='queued', evaluation_error='', queued_at=$3, updated_at=$3
		WHERE id=$1 AND evaluation_status = ANY($2)`
	tag, err := r.Pool.Exec(ctx, q, id, states, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=interview.requeue: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClaimNext claims the oldest queued interview. The inner SELECT skips rows
// locked by a concurrent claimer and the outer predicate re-checks the state.
func (r *InterviewRepo) ClaimNext(ctx domain.Context, attemptID string) (domain.Interview, bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ClaimNext")
	defer span.End()
	q := `UPDATE interviews SET evaluation_status='claimed', evaluation_attempt_id=$1, claimed_at=$2, updated_at=$2
		WHERE id = (
			SELECT id FROM interviews WHERE evaluation_status='queued'
			ORDER BY queued_at ASC NULLS FIRST, id ASC
			LIMIT 1 FOR UPDATE SKIP LOCKED
		) AND evaluation_status='queued'
		RETURNING ` + interviewColumns
	iv, err := scanInterview(r.Pool.QueryRow(ctx, q, attemptID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, false, nil
		}
		return domain.Interview{}, false, fmt.Errorf("op=interview.claim_next: %w", err)
	}
	span.SetAttributes(attribute.String("interview.id", iv.ID))
	return iv, true, nil
}

// ClaimByID claims one specific queued interview.
func (r *InterviewRepo) ClaimByID(ctx domain.Context, id, attemptID string) (domain.Interview, bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ClaimByID")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", id))
	q := `UPDATE interviews SET evaluation_status='claimed', evaluation_attempt_id=$2, claimed_at=$3, updated_at=$3
		WHERE id=$1 AND evaluation_status='queued'
		RETURNING ` + interviewColumns
	iv, err := scanInterview(r.Pool.QueryRow(ctx, q, id, attemptID, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Interview{}, false, nil
		}
		return domain.Interview{}, false, fmt.Errorf("op=interview.claim_by_id: %w", err)
	}
	return iv, true, nil
}

// Complete stores the result if this attempt still holds the claim.
func (r *InterviewRepo) Complete(ctx domain.Context, id, attemptID string, res domain.EvaluationResult) (bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", id), attribute.Int("interview.score", res.Score))
	structured, err := json.Marshal(res.Evaluation)
	if err != nil {
		return false, fmt.Errorf("op=interview.complete: %w", err)
	}
	q := `UPDATE interviews SET evaluation_status='completed', score=$3, recommendation=$4,
		structured_evaluation=$5, evaluation_error='', evaluated_at=$6, updated_at=$6
		WHERE id=$1 AND evaluation_attempt_id=$2 AND evaluation_status='claimed'`
	tag, err := r.Pool.Exec(ctx, q, id, attemptID, res.Score, res.Recommendation, structured, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=interview.complete: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Fail records errMsg (truncated) if this attempt still holds the claim.
func (r *InterviewRepo) Fail(ctx domain.Context, id, attemptID, errMsg string) (bool, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Fail")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", id))
	q := `UPDATE interviews SET evaluation_status='failed', evaluation_error=$3, updated_at=$4
		WHERE id=$1 AND evaluation_attempt_id=$2 AND evaluation_status='claimed'`
	tag, err := r.Pool.Exec(ctx, q, id, attemptID, textx.Truncate(errMsg, MaxStoredErrorLen), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=interview.fail: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListFailed returns failed interviews, most recently updated first.
func (r *InterviewRepo) ListFailed(ctx domain.Context, limit int) ([]domain.Interview, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ListFailed")
	defer span.End()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE evaluation_status='failed' ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("op=interview.list_failed: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("op=interview.list_failed: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=interview.list_failed: %w", err)
	}
	return out, nil
}

// ExpireClaims fails every claim taken before the cutoff and returns the affected ids.
func (r *InterviewRepo) ExpireClaims(ctx domain.Context, before time.Time, errMsg string) ([]string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.ExpireClaims")
	defer span.End()
	q := `UPDATE interviews SET evaluation_status='failed', evaluation_error=$2, updated_at=$3
		WHERE evaluation_status='claimed' AND claimed_at < $1
		RETURNING id`
	rows, err := r.Pool.Query(ctx, q, before.UTC(), textx.Truncate(errMsg, MaxStoredErrorLen), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("op=interview.expire_claims: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("op=interview.expire_claims: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=interview.expire_claims: %w", err)
	}
	span.SetAttributes(attribute.Int("interviews.expired", len(ids)))
	return ids, nil
}
