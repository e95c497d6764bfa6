// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	obsctx "github.com/HYRE-AU/Hyrenow-sub000/internal/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/pkg/textx"
)

// Error log sources.
const (
	SourceWebhook  = "webhook:voice"
	SourceSweep    = "sweep"
	SourceRetry    = "retry"
	SourceExpiry   = "claim-expiry"
	SourceOperator = "operator"
)

const maxLoggedMessage = 4000

// ErrorLogService records failures for later triage.
type ErrorLogService struct {
	Repo domain.ErrorLogRepository
	Now  func() time.Time
}

// NewErrorLogService constructs an ErrorLogService.
func NewErrorLogService(repo domain.ErrorLogRepository) ErrorLogService {
	return ErrorLogService{Repo: repo, Now: time.Now}
}

// Record appends e. It never returns an error and never panics: when the
// store is unavailable the entry goes to the process log instead.
func (s ErrorLogService) Record(ctx domain.Context, e domain.ErrorLogEntry) {
	lg := obsctx.LoggerFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			lg.Error("error log sink panicked", slog.Any("panic", r), slog.String("source", e.Source), slog.String("message", e.Message))
		}
	}()
	e.Message = textx.Truncate(textx.SanitizeText(e.Message), maxLoggedMessage)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if s.Repo == nil {
		lg.Error("error log (no sink)", entryAttrs(e)...)
		return
	}
	if _, err := s.Repo.Append(ctx, e); err != nil {
		attrs := append(entryAttrs(e), slog.Any("sink_error", err))
		lg.Error("error log write failed", attrs...)
	}
}

// ListUnresolved returns open entries, newest first.
func (s ErrorLogService) ListUnresolved(ctx domain.Context, limit int) ([]domain.ErrorLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out, err := s.Repo.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("op=errorlog.list: %w", err)
	}
	return out, nil
}

// Resolve marks an entry handled; it is the only mutation an entry allows.
func (s ErrorLogService) Resolve(ctx domain.Context, id, notes string) error {
	if id == "" {
		return fmt.Errorf("op=errorlog.resolve: %w: id required", domain.ErrInvalidArgument)
	}
	if err := s.Repo.Resolve(ctx, id, textx.SanitizeText(notes), s.now()); err != nil {
		return fmt.Errorf("op=errorlog.resolve: %w", err)
	}
	return nil
}

func (s ErrorLogService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// NewErrorEntry builds a log entry from err. Internal errors keep a stack.
func NewErrorEntry(source string, err error, interviewID string) domain.ErrorLogEntry {
	e := domain.ErrorLogEntry{
		Source:      source,
		Kind:        domain.ErrorKindOf(err),
		InterviewID: interviewID,
	}
	if err != nil {
		e.Message = err.Error()
	}
	if e.Kind == domain.ErrorKindInternal || e.Kind == domain.ErrorKindPersistence {
		e.Stack = string(debug.Stack())
	}
	return e
}

func entryAttrs(e domain.ErrorLogEntry) []any {
	return []any{
		slog.String("source", e.Source),
		slog.String("kind", string(e.Kind)),
		slog.String("message", e.Message),
		slog.String("interview_id", e.InterviewID),
	}
}

// discardRecorder is used when no recorder is wired.
type discardRecorder struct{}

func (discardRecorder) Record(ctx domain.Context, e domain.ErrorLogEntry) {
	obsctx.LoggerFromContext(ctx).Error("error log (no recorder)", entryAttrs(e)...)
}

func recorderOrDiscard(r domain.ErrorRecorder) domain.ErrorRecorder {
	if r == nil {
		return discardRecorder{}
	}
	return r
}
