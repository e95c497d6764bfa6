package evaluation

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

// Pipeline runs one evaluation attempt end to end. It persists the
// per-question rows but leaves the interview's status to the caller.
type Pipeline struct {
	Roles       domain.RoleRepository
	Evaluations domain.EvaluationRepository
	Segmenter   Segmenter
	Scorer      Scorer
	Summarizer  Summarizer
	Rationale   RationaleWriter
	Policy      config.ScoringPolicy
	Now         func() time.Time
}

// NewPipeline wires the steps around a single text-generation client.
func NewPipeline(cfg config.Config, policy config.ScoringPolicy, ai domain.AIClient, budget TokenBudget, roles domain.RoleRepository, evals domain.EvaluationRepository) *Pipeline {
	return &Pipeline{
		Roles:       roles,
		Evaluations: evals,
		Segmenter:   Segmenter{AI: ai, Budget: budget, Model: cfg.ChatModel, MaxTokens: cfg.MaxTranscriptTokens},
		Scorer:      Scorer{AI: ai, Policy: policy},
		Summarizer:  Summarizer{AI: ai, Policy: policy},
		Rationale:   RationaleWriter{AI: ai},
		Policy:      policy,
		Now:         time.Now,
	}
}

// Run evaluates iv under attemptID. Errors are fatal for the attempt;
// degraded steps are listed in the result instead.
func (p *Pipeline) Run(ctx domain.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error) {
	ctx, span := otel.Tracer("evaluation").Start(ctx, "evaluation.Run")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", iv.ID), attribute.String("attempt.id", attemptID))
	ctx, lg := obsctx.WithInterview(ctx, iv.ID, attemptID)

	qs, err := p.Roles.LoadQuestionSet(ctx, iv.RoleID)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("op=evaluation.run: load questions: %w", err)
	}
	if qs.InterviewQuestionCount() == 0 {
		return domain.EvaluationResult{}, fmt.Errorf("op=evaluation.run: %w: %w", domain.ErrInvalidArgument, ErrNoScoredQuestions)
	}

	pairs, err := p.Segmenter.Segment(ctx, iv.TranscriptText(), qs.Questions)
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("op=evaluation.run: segmentation failed: %w", err)
	}

	var (
		evals    []domain.QuestionEvaluation
		sums     []domain.TranscriptSummary
		display  []domain.QuestionSummary
		degraded []string
	)
	roleContext := qs.RoleContext()
	for _, pair := range pairs {
		q := pair.Question
		item := domain.QuestionSummary{QuestionID: q.ID, Question: q.Text, Type: q.Type, Answer: pair.Answer}
		if q.Scored() {
			out := p.Scorer.Score(ctx, pair, roleContext)
			ev, err := out.Unwrap()
			if err != nil {
				return domain.EvaluationResult{}, fmt.Errorf("op=evaluation.run: %w", err)
			}
			if out.IsDegraded() {
				lg.Warn("question score degraded", slog.String("question_id", q.ID), slog.String("reason", out.Reason))
				observability.RecordDegraded("score")
				degraded = append(degraded, "score:"+q.ID)
			}
			ev.InterviewID, ev.AttemptID = iv.ID, attemptID
			evals = append(evals, ev)
			score := ev.Score
			item.Score = &score
			item.Competency = ev.CompetencyName
		} else {
			if q.Type == domain.QuestionInterview {
				lg.Warn("interview question has no competency; summarizing only", slog.String("question_id", q.ID))
			}
			out := p.Summarizer.Summarize(ctx, pair)
			if out.IsDegraded() {
				lg.Warn("screening summary degraded", slog.String("question_id", q.ID), slog.String("reason", out.Reason))
				observability.RecordDegraded("summary")
				degraded = append(degraded, "summary:"+q.ID)
			}
			row := out.Value
			row.InterviewID, row.AttemptID = iv.ID, attemptID
			sums = append(sums, row)
			item.Summary = row.Summary
		}
		display = append(display, item)
	}

	agg, err := Aggregate(evals)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	if err := p.Evaluations.SaveAttempt(ctx, evals, sums); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("op=evaluation.run: %w", err)
	}

	cls := Classify(agg, p.Policy)
	se := domain.StructuredEvaluation{AttemptID: attemptID, EvaluatedAt: p.now(), QuestionSummaries: display}
	Shape(&se, agg, cls, p.Policy)

	rat := p.Rationale.Write(ctx, agg, cls)
	if rat.IsDegraded() {
		lg.Warn("rationale degraded", slog.String("reason", rat.Reason))
		observability.RecordDegraded("rationale")
		degraded = append(degraded, "rationale")
	}
	se.Rationale = rat.Value
	se.DegradedStages = degraded

	lg.Info("evaluation computed",
		slog.Int("overall", agg.Overall),
		slog.String("recommendation", string(cls.Recommendation)),
		slog.String("confidence", string(cls.Confidence)),
		slog.Int("scored_questions", len(evals)),
		slog.Int("degraded_steps", len(degraded)))
	span.SetAttributes(attribute.Int("overall", agg.Overall), attribute.String("recommendation", string(cls.Recommendation)))
	return domain.EvaluationResult{Score: agg.Overall, Recommendation: cls.Recommendation, Evaluation: se}, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now().UTC()
}
