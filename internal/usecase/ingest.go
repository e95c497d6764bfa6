package usecase

import (
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

// IngestStatus is the acknowledged outcome of a completion callback.
type IngestStatus string

const (
	IngestQueued    IngestStatus = "queued"
	IngestDuplicate IngestStatus = "duplicate"
	IngestInFlight  IngestStatus = "in_flight"
	IngestIgnored   IngestStatus = "ignored"
)

// IngestService turns a completion callback into a queued evaluation.
// It never scores; the sweep picks the interview up later.
type IngestService struct {
	Interviews domain.InterviewRepository
	// Calls is optional; without it a callback lacking a transcript is rejected.
	Calls  domain.CallDetailFetcher
	Events domain.EventPublisher
	Errors domain.ErrorRecorder
	Now    func() time.Time
}

// NewIngestService constructs an IngestService with its dependencies.
func NewIngestService(iv domain.InterviewRepository, calls domain.CallDetailFetcher, ev domain.EventPublisher, rec domain.ErrorRecorder) IngestService {
	return IngestService{Interviews: iv, Calls: calls, Events: ev, Errors: rec, Now: time.Now}
}

// HandleCallback queues the interview named by cb. Duplicate and
// concurrent deliveries succeed without touching the row.
func (s IngestService) HandleCallback(ctx domain.Context, cb domain.CompletionCallback) (IngestStatus, error) {
	tracer := otel.Tracer("usecase.ingest")
	ctx, span := tracer.Start(ctx, "ingest.HandleCallback")
	defer span.End()
	span.SetAttributes(attribute.String("event.type", cb.EventType), attribute.String("call.id", cb.Call.ID))
	lg := obsctx.LoggerFromContext(ctx)

	if !cb.Verified {
		lg.Warn("completion callback accepted without signature verification; WEBHOOK_SECRET is not set")
	}
	if !cb.Ingestible {
		observability.RecordCallback(string(IngestIgnored))
		return IngestIgnored, nil
	}
	if cb.Slug == "" {
		return "", s.reject(ctx, fmt.Errorf("op=ingest.callback: %w: interview slug not found in callback metadata", domain.ErrInvalidArgument), "")
	}
	if cb.Call.ID == "" {
		return "", s.reject(ctx, fmt.Errorf("op=ingest.callback: %w: call id missing", domain.ErrInvalidArgument), "")
	}

	iv, err := s.Interviews.GetBySlug(ctx, cb.Slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", s.reject(ctx, fmt.Errorf("op=ingest.callback: %w: interview slug %q", domain.ErrNotFound, cb.Slug), "")
		}
		return "", s.reject(ctx, fmt.Errorf("op=ingest.callback: %w", err), "")
	}
	ctx, lg = obsctx.WithInterview(ctx, iv.ID, "")
	span.SetAttributes(attribute.String("interview.id", iv.ID))

	if iv.ExternalCallID == cb.Call.ID && iv.EvaluationStatus == domain.EvaluationCompleted {
		lg.Info("duplicate completion callback ignored", slog.String("call_id", cb.Call.ID))
		observability.RecordCallback(string(IngestDuplicate))
		return IngestDuplicate, nil
	}
	if iv.EvaluationStatus.InFlight() {
		lg.Info("evaluation already in flight", slog.String("evaluation_status", string(iv.EvaluationStatus)))
		observability.RecordCallback(string(IngestInFlight))
		return IngestInFlight, nil
	}

	detail := s.completeDetail(ctx, cb.Call)
	if !detail.HasTranscript() {
		return "", s.reject(ctx, fmt.Errorf("op=ingest.callback: %w: no transcript for call %s", domain.ErrInvalidArgument, cb.Call.ID), iv.ID)
	}

	u := domain.TranscriptUpdate{
		Transcript:     detail.Transcript,
		Turns:          detail.Turns,
		RecordingURL:   detail.RecordingURL,
		ExternalCallID: cb.Call.ID,
		Status:         domain.StatusAfterCallback(iv.Status),
	}
	won, err := s.Interviews.QueueTranscript(ctx, iv.ID, iv.EvaluationStatus, u)
	if err != nil {
		return "", s.reject(ctx, err, iv.ID)
	}
	if !won {
		// another delivery or the retry path moved the row first
		lg.Info("queue transition lost to a concurrent writer")
		observability.RecordCallback(string(IngestInFlight))
		return IngestInFlight, nil
	}

	observability.RecordCallback(string(IngestQueued))
	observability.QueueEvaluation()
	publish(ctx, s.Events, domain.EvaluationEvent{
		ID: uuid.NewString(), Type: domain.EventInterviewQueued, InterviewID: iv.ID, OccurredAt: s.now(),
	})
	lg.Info("interview queued for evaluation", slog.String("call_id", cb.Call.ID), slog.Int("turns", len(u.Turns)))
	return IngestQueued, nil
}

// completeDetail fills a transcript-less callback from the call-detail API.
// Fetch failures leave the callback's own data in place.
func (s IngestService) completeDetail(ctx domain.Context, d domain.CallDetail) domain.CallDetail {
	if d.HasTranscript() || s.Calls == nil {
		return d
	}
	lg := obsctx.LoggerFromContext(ctx)
	fetched, err := s.Calls.FetchCall(ctx, d.ID)
	if err != nil {
		lg.Warn("call detail fetch failed", slog.String("call_id", d.ID), slog.Any("error", err))
		return d
	}
	if fetched.RecordingURL == "" {
		fetched.RecordingURL = d.RecordingURL
	}
	fetched.ID = d.ID
	return fetched
}

func (s IngestService) reject(ctx domain.Context, err error, interviewID string) error {
	recorderOrDiscard(s.Errors).Record(ctx, persistenceEntry(SourceWebhook, err, interviewID))
	observability.RecordCallback("rejected")
	return err
}

func (s IngestService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// publish announces ev without letting a broker problem reach the caller.
func publish(ctx domain.Context, p domain.EventPublisher, ev domain.EvaluationEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		obsctx.LoggerFromContext(ctx).Warn("lifecycle event not published",
			slog.String("type", string(ev.Type)), slog.String("interview_id", ev.InterviewID), slog.Any("error", err))
	}
}
