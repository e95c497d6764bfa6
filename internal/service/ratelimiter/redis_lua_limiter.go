// Package ratelimiter provides a shared token bucket for outbound
// text-generation calls. Buckets live in Redis so every worker and the
// server draw from the same budget.
package ratelimiter

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a call for key may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig is a token bucket: Capacity tokens, refilled at RefillRate per second.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64
}

// NewBucketConfig builds a bucket refilling perMinute tokens a minute with
// room for burst. A burst below one falls back to perMinute.
func NewBucketConfig(perMinute, burst int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	capacity := int64(burst)
	if capacity <= 0 {
		capacity = int64(perMinute)
	}
	return BucketConfig{Capacity: capacity, RefillRate: float64(perMinute) / 60.0}
}

// RedisLuaLimiter evaluates the bucket atomically with a Lua script.
type RedisLuaLimiter struct {
	redis   redis.Scripter
	prefix  string
	buckets map[string]BucketConfig
	script  *redis.Script
	mu      sync.RWMutex
}

// NewRedisLuaLimiter returns nil when rdb is nil; a nil limiter allows everything.
func NewRedisLuaLimiter(rdb redis.Scripter, buckets map[string]BucketConfig) *RedisLuaLimiter {
	if rdb == nil {
		return nil
	}
	if buckets == nil {
		buckets = map[string]BucketConfig{}
	}
	return &RedisLuaLimiter{
		redis:   rdb,
		prefix:  "ratelimit:",
		buckets: buckets,
		script:  redis.NewScript(tokenBucketScript),
	}
}

// KEYS[1] bucket, ARGV capacity, refill per second, now (seconds), cost.
const tokenBucketScript = `
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local wait = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif rate > 0 then
  wait = (cost - tokens) / rate
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("EXPIRE", KEYS[1], math.ceil(capacity / math.max(rate, 0.001)) + 60)

return { allowed, tostring(wait) }
`

// Allow takes cost tokens from the bucket for key. Unknown keys and Redis
// failures are allowed so a cache outage never stops evaluations.
func (l *RedisLuaLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	cfg, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok || cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	now := float64(time.Now().UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.redis, []string{l.prefix + key}, cfg.Capacity, cfg.RefillRate, now, cost).Slice()
	if err != nil {
		slog.Error("rate limiter script failed", slog.String("key", key), slog.Any("error", err))
		return true, 0, err
	}
	if len(res) < 2 {
		slog.Error("rate limiter unexpected result", slog.String("key", key), slog.Any("result", res))
		return true, 0, nil
	}
	allowed := toInt64(res[0]) == 1
	wait := parseSeconds(res[1])
	return allowed, wait, nil
}

// Wait blocks until key has capacity for cost or ctx ends.
func (l *RedisLuaLimiter) Wait(ctx context.Context, key string, cost int64) error {
	for {
		allowed, retryAfter, _ := l.Allow(ctx, key, cost)
		if allowed {
			return nil
		}
		if retryAfter <= 0 {
			retryAfter = 100 * time.Millisecond
		}
		t := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// SetBucketConfig registers or replaces the bucket for key.
func (l *RedisLuaLimiter) SetBucketConfig(key string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[key] = cfg
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func parseSeconds(v any) time.Duration {
	var sec float64
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		sec = f
	case int64:
		sec = float64(t)
	case float64:
		sec = t
	}
	if math.IsNaN(sec) || sec <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(sec*1000)) * time.Millisecond
}
