package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

// CallbackIngestor accepts normalized completion callbacks.
type CallbackIngestor interface {
	HandleCallback(ctx domain.Context, cb domain.CompletionCallback) (usecase.IngestStatus, error)
}

// Sweeper evaluates at most one queued interview per call.
type Sweeper interface {
	SweepOnce(ctx domain.Context) (usecase.SweepResult, error)
}

// RetryRunner backs the failed-queue operator endpoints.
type RetryRunner interface {
	Retry(ctx domain.Context, interviewID string) (usecase.SweepResult, error)
	ListFailed(ctx domain.Context, limit int) ([]domain.Interview, error)
}

// ErrorTriage backs the error-log operator endpoints and records
// rejections raised by the handlers themselves.
type ErrorTriage interface {
	domain.ErrorRecorder
	ListUnresolved(ctx domain.Context, limit int) ([]domain.ErrorLogEntry, error)
	Resolve(ctx domain.Context, id, notes string) error
}

// ReadinessCheck is one named dependency probe for /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg     config.Config
	Ingest  CallbackIngestor
	Sweeps  Sweeper
	Retries RetryRunner
	Errors  ErrorTriage
	Checks  []ReadinessCheck
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, ingest CallbackIngestor, sweeps Sweeper, retries RetryRunner, errs ErrorTriage, checks ...ReadinessCheck) *Server {
	return &Server{Cfg: cfg, Ingest: ingest, Sweeps: sweeps, Retries: retries, Errors: errs, Checks: checks}
}

// HealthzHandler reports liveness only.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler probes every configured dependency.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(s.Checks))
		st := http.StatusOK
		for _, c := range s.Checks {
			if c.Check == nil {
				continue
			}
			if err := c.Check(ctx); err != nil {
				checks = append(checks, check{Name: c.Name, Details: err.Error()})
				st = http.StatusServiceUnavailable
				continue
			}
			checks = append(checks, check{Name: c.Name, OK: true})
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// record forwards a handler-level rejection to the error log.
func (s *Server) record(ctx context.Context, e domain.ErrorLogEntry) {
	if s.Errors == nil {
		return
	}
	s.Errors.Record(ctx, e)
}
