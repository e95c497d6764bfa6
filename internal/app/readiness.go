package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/HYRE-AU/Hyrenow-sub000/internal/adapter/httpserver"
)

// Pinger is the minimal interface for a dependency capable of Ping.
// *pgxpool.Pool and *kgo.Client satisfy it directly.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPinger adapts a go-redis client to Pinger.
type RedisPinger struct{ Client redis.UniversalClient }

// Ping implements Pinger.
func (p RedisPinger) Ping(ctx context.Context) error {
	if p.Client == nil {
		return fmt.Errorf("redis not configured")
	}
	return p.Client.Ping(ctx).Err()
}

// BuildReadinessChecks returns the /readyz probes. The database is always
// probed; redis and kafka only when configured (nil means disabled).
func BuildReadinessChecks(db Pinger, rdb Pinger, kafka Pinger) []httpserver.ReadinessCheck {
	checks := []httpserver.ReadinessCheck{{
		Name: "db",
		Check: func(ctx context.Context) error {
			if db == nil {
				return fmt.Errorf("db not configured")
			}
			return db.Ping(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "redis", Check: rdb.Ping})
	}
	if kafka != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "kafka", Check: kafka.Ping})
	}
	return checks
}
