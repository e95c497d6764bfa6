package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
)

// ClaimExpiredMessage is stored on interviews whose claim went stale.
const ClaimExpiredMessage = "evaluation claim expired"

// ErrClaimLost means the row left the claimed state under this attempt,
// typically because the stale-claim sweeper expired it.
var ErrClaimLost = errors.New("claim lost before the result was stored")

// persistTimeout bounds status writes made after the attempt's own
// context has run out.
const persistTimeout = 10 * time.Second

// Evaluator runs the scoring pipeline for one claimed interview.
type Evaluator interface {
	Run(ctx domain.Context, iv domain.Interview, attemptID string) (domain.EvaluationResult, error)
}

// SweepResult reports what one sweep or retry did. Claimed is false when
// there was nothing to do.
type SweepResult struct {
	Claimed        bool                  `json:"-"`
	InterviewID    string                `json:"interviewId,omitempty"`
	AttemptID      string                `json:"attemptId,omitempty"`
	Recommendation domain.Recommendation `json:"recommendation,omitempty"`
	Score          *int                  `json:"score,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// ClaimService owns the claimed -> completed|failed half of the
// evaluation state machine.
type ClaimService struct {
	Interviews domain.InterviewRepository
	Evaluator  Evaluator
	Events     domain.EventPublisher
	Errors     domain.ErrorRecorder
	NewAttempt func() string
	Now        func() time.Time
}

// NewClaimService constructs a ClaimService with its dependencies.
func NewClaimService(iv domain.InterviewRepository, ev Evaluator, pub domain.EventPublisher, rec domain.ErrorRecorder) ClaimService {
	return ClaimService{Interviews: iv, Evaluator: ev, Events: pub, Errors: rec, NewAttempt: uuid.NewString, Now: time.Now}
}

// SweepOnce claims the oldest queued interview and evaluates it. At most
// one interview is processed per call.
func (s ClaimService) SweepOnce(ctx domain.Context) (SweepResult, error) {
	tracer := otel.Tracer("usecase.claim")
	ctx, span := tracer.Start(ctx, "claim.SweepOnce")
	defer span.End()

	attemptID := s.attemptID()
	iv, ok, err := s.Interviews.ClaimNext(ctx, attemptID)
	if err != nil {
		recorderOrDiscard(s.Errors).Record(ctx, persistenceEntry(SourceSweep, err, ""))
		return SweepResult{}, fmt.Errorf("op=claim.sweep: %w", err)
	}
	if !ok {
		obsctx.LoggerFromContext(ctx).Debug("sweep found nothing queued")
		return SweepResult{}, nil
	}
	span.SetAttributes(attribute.String("interview.id", iv.ID))
	return s.Evaluate(ctx, iv, attemptID, SourceSweep)
}

// Evaluate runs the pipeline for an interview already claimed under
// attemptID and stores the outcome. The returned error is the attempt's
// failure, already persisted on the row.
func (s ClaimService) Evaluate(ctx domain.Context, iv domain.Interview, attemptID, source string) (SweepResult, error) {
	ctx, lg := obsctx.WithInterview(ctx, iv.ID, attemptID)
	res := SweepResult{Claimed: true, InterviewID: iv.ID, AttemptID: attemptID}
	start := s.now()
	observability.StartEvaluation()
	lg.Info("evaluation started", slog.String("source", source))

	out, runErr := s.Evaluator.Run(ctx, iv, attemptID)
	pctx, cancel := persistCtx(ctx)
	defer cancel()
	if runErr == nil {
		won, err := s.Interviews.Complete(pctx, iv.ID, attemptID, out)
		switch {
		case err != nil:
			runErr = fmt.Errorf("op=claim.complete: %w", err)
		case !won:
			runErr = fmt.Errorf("op=claim.complete: %w: %w", domain.ErrConflict, ErrClaimLost)
		}
	}
	dur := s.now().Sub(start)

	if runErr != nil {
		msg := runErr.Error()
		res.Error = msg
		if _, err := s.Interviews.Fail(pctx, iv.ID, attemptID, msg); err != nil {
			lg.Error("failed to mark evaluation failed", slog.Any("error", err))
		}
		recorderOrDiscard(s.Errors).Record(ctx, NewErrorEntry(source, runErr, iv.ID))
		observability.FailEvaluation(dur)
		publish(ctx, s.Events, domain.EvaluationEvent{
			ID: uuid.NewString(), Type: domain.EventEvaluationFailed, InterviewID: iv.ID, AttemptID: attemptID,
			Error: msg, OccurredAt: s.now(),
		})
		lg.Error("evaluation failed", slog.Any("error", runErr), slog.Duration("duration", dur))
		return res, runErr
	}

	score := out.Score
	res.Score = &score
	res.Recommendation = out.Recommendation
	observability.CompleteEvaluation(string(out.Recommendation), out.Score, dur)
	publish(ctx, s.Events, domain.EvaluationEvent{
		ID: uuid.NewString(), Type: domain.EventInterviewEvaluated, InterviewID: iv.ID, AttemptID: attemptID,
		Recommendation: out.Recommendation, Score: &score, OccurredAt: s.now(),
	})
	lg.Info("evaluation completed",
		slog.Int("score", out.Score),
		slog.String("recommendation", string(out.Recommendation)),
		slog.Duration("duration", dur))
	return res, nil
}

// ExpireStale fails claims older than staleAfter so a crashed worker
// cannot pin an interview. It returns how many claims were expired.
func (s ClaimService) ExpireStale(ctx domain.Context, staleAfter time.Duration) (int, error) {
	ids, err := s.Interviews.ExpireClaims(ctx, s.now().Add(-staleAfter), ClaimExpiredMessage)
	if err != nil {
		return 0, fmt.Errorf("op=claim.expire: %w", err)
	}
	for _, id := range ids {
		recorderOrDiscard(s.Errors).Record(ctx, domain.ErrorLogEntry{
			Source: SourceExpiry, Kind: domain.ErrorKindInternal, Message: ClaimExpiredMessage, InterviewID: id,
		})
		publish(ctx, s.Events, domain.EvaluationEvent{
			ID: uuid.NewString(), Type: domain.EventEvaluationFailed, InterviewID: id, Error: ClaimExpiredMessage, OccurredAt: s.now(),
		})
	}
	observability.ExpireEvaluations(len(ids))
	return len(ids), nil
}

func (s ClaimService) attemptID() string {
	if s.NewAttempt == nil {
		return uuid.NewString()
	}
	return s.NewAttempt()
}

func (s ClaimService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// persistCtx detaches status writes from an expired sweep budget.
func persistCtx(ctx domain.Context) (domain.Context, context.CancelFunc) {
	if ctx.Err() == nil {
		return ctx, func() {}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func persistenceEntry(source string, err error, interviewID string) domain.ErrorLogEntry {
	e := NewErrorEntry(source, err, interviewID)
	if e.Kind == domain.ErrorKindInternal {
		e.Kind = domain.ErrorKindPersistence
	}
	return e
}
