// Package main provides the worker application entry point.
// The worker sweeps queued interviews on a timer, expires stale claims
// and prunes the error log. With Kafka configured it also wakes up early
// on interview.queued events.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/observability"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/queue/redpanda"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/app"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Expose sweep and AI metrics on a dedicated port for Prometheus.
	observability.InitMetrics()
	metricsSrv := &http.Server{Addr: ":9090", ReadHeaderTimeout: 5 * time.Second}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv.Handler = mux
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	policy, err := config.LoadScoringPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		slog.Error("scoring policy load failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := app.Bootstrap(ctx, cfg, policy)
	if err != nil {
		comps.Close()
		slog.Error("bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer comps.Close()

	var wg sync.WaitGroup
	goRun := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
			slog.Info("loop stopped", slog.String("loop", name))
		}()
	}

	sweeper := app.NewEvaluationSweeper(comps.Claims, cfg.SweepInterval, cfg.SweepBudget)
	goRun("evaluation-sweeper", sweeper.Run)
	goRun("stuck-claim-sweeper", app.NewStuckClaimSweeper(comps.Claims, cfg.ClaimStaleAfter, cfg.StuckSweepInterval).Run)
	if cfg.ErrorLogRetentionDays > 0 {
		goRun("error-log-cleanup", func(ctx context.Context) { comps.Cleanup.RunPeriodic(ctx, cfg.CleanupInterval) })
	}

	if cfg.EventsEnabled() {
		consumer, err := redpanda.NewWakeConsumer(cfg.KafkaBrokers, cfg.WorkerGroupID, cfg.EventsTopic, sweeper.Nudge)
		if err != nil {
			slog.Error("wake consumer init failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				slog.Error("failed to close wake consumer", slog.Any("error", err))
			}
		}()
		goRun("wake-consumer", func(ctx context.Context) {
			if err := consumer.Run(ctx); err != nil {
				slog.Error("wake consumer stopped", slog.Any("error", err))
			}
		})
	} else {
		slog.Info("KAFKA_BROKERS not set; relying on the sweep interval only", slog.Duration("interval", cfg.SweepInterval))
	}

	slog.Info("worker started, waiting for shutdown signal")
	<-ctx.Done()
	slog.Info("signal received, shutting down")

	// An interrupted evaluation is recorded as failed by the claim service.
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(cfg.ServerShutdownTimeout):
		slog.Warn("timed out waiting for loops to stop")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	slog.Info("worker stopped")
}
