// Command server runs the interview evaluation HTTP API: the voice
// completion callback, the sweep trigger and the operator endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpserver "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/httpserver"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/app"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
)

func main() {
	hashToken := flag.String("hash-token", "", "print the OPERATOR_TOKEN_HASH for the given token and exit")
	flag.Parse()
	if *hashToken != "" {
		h, err := httpserver.HashToken(*hashToken, httpserver.DefaultArgon2Params)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	policy, err := config.LoadScoringPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		slog.Error("scoring policy load failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	comps, err := app.Bootstrap(ctx, cfg, policy)
	if err != nil {
		comps.Close()
		slog.Error("bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer comps.Close()

	if !cfg.OperatorEnabled() {
		slog.Warn("OPERATOR_TOKEN_HASH not set; operator endpoints will refuse all requests")
	}
	if cfg.WebhookSecret == "" {
		slog.Warn("WEBHOOK_SECRET not set; callbacks are accepted unverified")
	}

	srv := httpserver.NewServer(cfg, comps.Ingest, comps.Claims, comps.Retries, comps.Errors, comps.ReadinessChecks()...)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("events", cfg.EventsEnabled()))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
