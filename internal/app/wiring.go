package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpserver "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/httpserver"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai/real"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/ai/tokencount"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/queue/redpanda"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/repo/postgres"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/voice"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/evaluation"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/service/ratelimiter"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/usecase"
)

// Components is everything the server and the worker share. Optional
// infrastructure (Redis, Kafka) is nil when not configured.
type Components struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Publisher *redpanda.Publisher

	Errors  usecase.ErrorLogService
	Ingest  usecase.IngestService
	Claims  usecase.ClaimService
	Retries usecase.RetryService
	Cleanup *postgres.CleanupService
}

// Bootstrap connects to the store, applies migrations and builds the
// services. Call Close when done, also after an error.
func Bootstrap(ctx context.Context, cfg config.Config, policy config.ScoringPolicy) (*Components, error) {
	c := &Components{}

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return c, err
	}
	c.Pool = pool
	if err := postgres.Migrate(ctx, pool); err != nil {
		return c, err
	}

	var limiter real.Limiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return c, fmt.Errorf("op=app.bootstrap: redis url: %w", err)
		}
		c.Redis = redis.NewClient(opts)
		limiter = ratelimiter.NewRedisLuaLimiter(c.Redis, map[string]ratelimiter.BucketConfig{
			real.LimiterKey: ratelimiter.NewBucketConfig(cfg.AIRateLimitPerMin, cfg.AIRateLimitBurst),
		})
		slog.Info("shared text-generation rate limit enabled", slog.Int("per_min", cfg.AIRateLimitPerMin), slog.Int("burst", cfg.AIRateLimitBurst))
	} else {
		slog.Warn("REDIS_URL not set; text-generation calls are not rate limited across processes")
	}

	var events domain.EventPublisher
	if cfg.EventsEnabled() {
		pub, err := redpanda.NewPublisher(cfg.KafkaBrokers, cfg.EventsTopic)
		if err != nil {
			return c, err
		}
		c.Publisher = pub
		if err := pub.EnsureTopic(ctx); err != nil {
			// Publishing still works against auto-created topics.
			slog.Warn("events topic bootstrap failed", slog.Any("error", err))
		}
		events = pub
	}

	interviews := postgres.NewInterviewRepo(pool)
	c.Errors = usecase.NewErrorLogService(postgres.NewErrorLogRepo(pool))
	pipeline := evaluation.NewPipeline(cfg, policy, real.New(cfg, limiter), tokencount.DefaultCounter,
		postgres.NewRoleRepo(pool), postgres.NewEvaluationRepo(pool))

	var calls domain.CallDetailFetcher
	if cfg.VoiceAPIKey != "" {
		calls = voice.New(cfg)
	}
	c.Ingest = usecase.NewIngestService(interviews, calls, events, c.Errors)
	c.Claims = usecase.NewClaimService(interviews, pipeline, events, c.Errors)
	c.Retries = usecase.NewRetryService(interviews, c.Claims, c.Errors)
	c.Cleanup = postgres.NewCleanupService(pool, cfg.ErrorLogRetentionDays)
	return c, nil
}

// ReadinessChecks probes every configured dependency.
func (c *Components) ReadinessChecks() []httpserver.ReadinessCheck {
	var db, rdb, kafka Pinger
	if c.Pool != nil {
		db = c.Pool
	}
	if c.Redis != nil {
		rdb = RedisPinger{Client: c.Redis}
	}
	if c.Publisher != nil {
		kafka = c.Publisher
	}
	return BuildReadinessChecks(db, rdb, kafka)
}

// Close releases connections in reverse order of creation.
func (c *Components) Close() {
	if c == nil {
		return
	}
	if c.Publisher != nil {
		_ = c.Publisher.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			slog.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
