package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

// Sweeper evaluates at most one queued interview per call.
type Sweeper interface {
	SweepOnce(ctx domain.Context) (usecase.SweepResult, error)
}

// EvaluationSweeper runs one sweep per tick, each bounded by the sweep
// budget. Sweeps never overlap within a process; the claim CAS keeps
// separate processes from evaluating the same interview.
type EvaluationSweeper struct {
	sweeps   Sweeper
	interval time.Duration
	budget   time.Duration
	wake     chan struct{}
}

// NewEvaluationSweeper returns nil when sweeps is nil.
func NewEvaluationSweeper(sweeps Sweeper, interval, budget time.Duration) *EvaluationSweeper {
	if sweeps == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if budget <= 0 {
		budget = 5 * time.Minute
	}
	return &EvaluationSweeper{sweeps: sweeps, interval: interval, budget: budget, wake: make(chan struct{}, 1)}
}

// Nudge asks for an early sweep. It never blocks; nudges that arrive
// while one is pending collapse into it.
func (s *EvaluationSweeper) Nudge(interviewID string) {
	if s == nil {
		return
	}
	select {
	case s.wake <- struct{}{}:
		slog.Debug("sweep nudged", slog.String("interview_id", interviewID))
	default:
	}
}

// Run sweeps once per tick or nudge until ctx is done.
func (s *EvaluationSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	slog.Info("evaluation sweeper started", slog.Duration("interval", s.interval), slog.Duration("budget", s.budget))

	for {
		s.sweepOnce(ctx)
		select {
		case <-ctx.Done():
			slog.Info("evaluation sweeper stopping")
			return
		case <-ticker.C:
		case <-s.wake:
		}
	}
}

// sweepOnce reports whether an interview was claimed.
func (s *EvaluationSweeper) sweepOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	tracer := otel.Tracer("app.sweeper")
	ctx, span := tracer.Start(ctx, "EvaluationSweeper.sweepOnce")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.budget)
	defer cancel()

	res, err := s.sweeps.SweepOnce(ctx)
	span.SetAttributes(attribute.Bool("sweep.claimed", res.Claimed), attribute.String("interview.id", res.InterviewID))
	if err != nil {
		span.RecordError(err)
		slog.Error("sweep failed", slog.String("interview_id", res.InterviewID), slog.Any("error", err))
		return res.Claimed
	}
	if res.Claimed {
		slog.Info("sweep evaluated interview",
			slog.String("interview_id", res.InterviewID),
			slog.String("recommendation", string(res.Recommendation)))
	}
	return res.Claimed
}

// ClaimExpirer fails claims that outlived their worker.
type ClaimExpirer interface {
	ExpireStale(ctx domain.Context, staleAfter time.Duration) (int, error)
}

// StuckClaimSweeper periodically fails claims older than staleAfter so a
// crashed worker cannot pin an interview in claimed.
type StuckClaimSweeper struct {
	claims     ClaimExpirer
	staleAfter time.Duration
	interval   time.Duration
}

// NewStuckClaimSweeper returns nil when claims is nil.
func NewStuckClaimSweeper(claims ClaimExpirer, staleAfter, interval time.Duration) *StuckClaimSweeper {
	if claims == nil {
		return nil
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StuckClaimSweeper{claims: claims, staleAfter: staleAfter, interval: interval}
}

// Run expires stale claims until ctx is done.
func (s *StuckClaimSweeper) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("stuck claim sweeper stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *StuckClaimSweeper) sweepOnce(ctx context.Context) {
	tracer := otel.Tracer("app.sweeper")
	ctx, span := tracer.Start(ctx, "StuckClaimSweeper.sweepOnce")
	defer span.End()
	span.SetAttributes(attribute.Float64("claims.stale_after_seconds", s.staleAfter.Seconds()))

	n, err := s.claims.ExpireStale(ctx, s.staleAfter)
	if err != nil {
		span.RecordError(err)
		slog.Error("stuck claim sweep failed", slog.Any("error", err))
		return
	}
	span.SetAttributes(attribute.Int("claims.expired", n))
	if n > 0 {
		slog.Warn("expired stuck evaluation claims", slog.Int("count", n), slog.Duration("stale_after", s.staleAfter))
	}
}
