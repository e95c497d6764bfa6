package usecase

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/pkg/textx"
)

// MaxDisplayedError caps error text returned to the operator.
const MaxDisplayedError = 500

// requeueable lists the states a manual retry may start from.
var requeueable = []domain.EvaluationStatus{domain.EvaluationNone, domain.EvaluationFailed, domain.EvaluationCompleted}

// RetryService re-runs an evaluation on operator request. A retry is a new
// attempt from scratch; earlier attempt rows are superseded, not merged.
type RetryService struct {
	Interviews domain.InterviewRepository
	Claims     ClaimService
	Errors     domain.ErrorRecorder
}

// NewRetryService constructs a RetryService.
func NewRetryService(iv domain.InterviewRepository, claims ClaimService, rec domain.ErrorRecorder) RetryService {
	return RetryService{Interviews: iv, Claims: claims, Errors: rec}
}

// Retry requeues, claims and evaluates one interview synchronously.
func (s RetryService) Retry(ctx domain.Context, interviewID string) (SweepResult, error) {
	tracer := otel.Tracer("usecase.retry")
	ctx, span := tracer.Start(ctx, "retry.Retry")
	defer span.End()
	span.SetAttributes(attribute.String("interview.id", interviewID))

	if interviewID == "" {
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w: interview id required", domain.ErrInvalidArgument), "")
	}
	iv, err := s.Interviews.Get(ctx, interviewID)
	if err != nil {
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w", err), interviewID)
	}
	if !iv.HasTranscript() {
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w: interview has no transcript", domain.ErrInvalidArgument), iv.ID)
	}
	switch iv.EvaluationStatus {
	case domain.EvaluationClaimed:
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w: evaluation already running", domain.ErrConflict), iv.ID)
	case domain.EvaluationQueued:
		// already queued; claim it directly
	default:
		won, err := s.Interviews.Requeue(ctx, iv.ID, requeueable)
		if err != nil {
			return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w", err), iv.ID)
		}
		if !won {
			return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w: evaluation status changed concurrently", domain.ErrConflict), iv.ID)
		}
	}

	attemptID := s.Claims.attemptID()
	claimed, ok, err := s.Interviews.ClaimByID(ctx, iv.ID, attemptID)
	if err != nil {
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w", err), iv.ID)
	}
	if !ok {
		return SweepResult{}, s.fail(ctx, fmt.Errorf("op=retry: %w: a sweep claimed the interview first", domain.ErrConflict), iv.ID)
	}
	res, err := s.Claims.Evaluate(ctx, claimed, attemptID, SourceRetry)
	if err != nil {
		res.Error = DisplayError(err)
		return res, err
	}
	return res, nil
}

// ListFailed returns the operator's failed queue.
func (s RetryService) ListFailed(ctx domain.Context, limit int) ([]domain.Interview, error) {
	out, err := s.Interviews.ListFailed(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("op=retry.list_failed: %w", err)
	}
	return out, nil
}

// DisplayError renders err for the operator, capped at MaxDisplayedError bytes.
func DisplayError(err error) string {
	if err == nil {
		return ""
	}
	return textx.Truncate(err.Error(), MaxDisplayedError)
}

// fail records every refused or failed manual retry before returning err.
func (s RetryService) fail(ctx domain.Context, err error, interviewID string) error {
	recorderOrDiscard(s.Errors).Record(ctx, persistenceEntry(SourceRetry, err, interviewID))
	return err
}
