package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/httpserver"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer(srv.Errors))
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	// Only the operator endpoints are meant for browsers.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Group(func(wr chi.Router) {
		wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		wr.Post("/v1/callbacks/voice", srv.CallbackHandler())
		wr.With(srv.SweepAuth).Post("/v1/sweep", srv.SweepHandler())
	})

	r.Group(func(op chi.Router) {
		op.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
		op.Use(srv.OperatorAuth)
		op.Get("/v1/evaluations/failed", srv.ListFailedHandler())
		op.Post("/v1/interviews/{id}/retry", srv.RetryHandler())
		op.Get("/v1/errors", srv.ListErrorsHandler())
		op.Post("/v1/errors/{id}/resolve", srv.ResolveErrorHandler())
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}
