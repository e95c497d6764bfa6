package httpserver_test

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	httpserver "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/httpserver"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

type fakeIngest struct {
	mu     sync.Mutex
	got    []domain.CompletionCallback
	status usecase.IngestStatus
	err    error
}

func (f *fakeIngest) HandleCallback(_ domain.Context, cb domain.CompletionCallback) (usecase.IngestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, cb)
	return f.status, f.err
}

type fakeSweeper struct {
	res      usecase.SweepResult
	err      error
	deadline bool
}

func (f *fakeSweeper) SweepOnce(ctx domain.Context) (usecase.SweepResult, error) {
	_, f.deadline = ctx.Deadline()
	return f.res, f.err
}

type fakeRetries struct {
	failed    []domain.Interview
	limit     int
	res       usecase.SweepResult
	err       error
	retriedID string
	deadline  time.Time
}

func (f *fakeRetries) Retry(ctx domain.Context, id string) (usecase.SweepResult, error) {
	f.retriedID = id
	f.deadline, _ = ctx.Deadline()
	return f.res, f.err
}

func (f *fakeRetries) ListFailed(_ domain.Context, limit int) ([]domain.Interview, error) {
	f.limit = limit
	return f.failed, f.err
}

type fakeTriage struct {
	mu         sync.Mutex
	recorded   []domain.ErrorLogEntry
	entries    []domain.ErrorLogEntry
	resolved   map[string]string
	resolveErr error
	listErr    error
}

func (f *fakeTriage) Record(_ domain.Context, e domain.ErrorLogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, e)
}

func (f *fakeTriage) ListUnresolved(_ domain.Context, _ int) ([]domain.ErrorLogEntry, error) {
	return f.entries, f.listErr
}

func (f *fakeTriage) Resolve(_ domain.Context, id, notes string) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	if f.resolved == nil {
		f.resolved = map[string]string{}
	}
	f.resolved[id] = notes
	return nil
}

func (f *fakeTriage) kinds() []domain.ErrorKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ErrorKind, 0, len(f.recorded))
	for _, e := range f.recorded {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	ingest  *fakeIngest
	sweeps  *fakeSweeper
	retries *fakeRetries
	triage  *fakeTriage
	srv     *httpserver.Server
	handler http.Handler
}

var testArgon2 = httpserver.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 8, KeyLen: 16}

const operatorToken = "op-token"

func newFixture(cfg config.Config, checks ...httpserver.ReadinessCheck) *fixture {
	f := &fixture{
		ingest:  &fakeIngest{status: usecase.IngestQueued},
		sweeps:  &fakeSweeper{},
		retries: &fakeRetries{},
		triage:  &fakeTriage{},
	}
	if cfg.OperatorTokenHash == "" {
		cfg.OperatorTokenHash, _ = httpserver.HashToken(operatorToken, testArgon2)
	}
	f.srv = httpserver.NewServer(cfg, f.ingest, f.sweeps, f.retries, f.triage, checks...)

	r := chi.NewRouter()
	r.Use(httpserver.Recoverer(f.triage))
	r.Use(httpserver.RequestID())
	r.Get("/healthz", f.srv.HealthzHandler())
	r.Get("/readyz", f.srv.ReadyzHandler())
	r.Post("/v1/callbacks/voice", f.srv.CallbackHandler())
	r.With(f.srv.SweepAuth).Post("/v1/sweep", f.srv.SweepHandler())
	r.Group(func(op chi.Router) {
		op.Use(f.srv.OperatorAuth)
		op.Get("/v1/evaluations/failed", f.srv.ListFailedHandler())
		op.Post("/v1/interviews/{id}/retry", f.srv.RetryHandler())
		op.Get("/v1/errors", f.srv.ListErrorsHandler())
		op.Post("/v1/errors/{id}/resolve", f.srv.ResolveErrorHandler())
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	f.handler = r
	return f
}
