// File: internal/ratelimit/fixed_window.go
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecowas_fisheries_backend/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// windowCounterScript bumps the hit counter of one window bucket and returns it.
// The first hit arms the expiry in the same atomic call, so a bucket never
// outlives its window.
var windowCounterScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return hits
`)

const defaultPrefix = "fisheries:ratelimit"

// FixedWindowLimiter limits requests per key in a fixed time window shared through Redis.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	redisClient *redis.Client
	redisPrefix string
	logger      *zap.Logger
	now         func() time.Time
}

// NewRedisFixedWindowLimiter creates a Redis-backed distributed limiter.
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration, logger *zap.Logger) (*FixedWindowLimiter, error) {
	if limit <= 0 || window < time.Millisecond {
		return nil, errors.New("rate limiter requires a positive limit and a window of at least 1ms")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		redisClient: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		redisPrefix: prefix,
		logger:      logger.Named("ratelimit"),
		now:         time.Now,
	}, nil
}

// NewFromConfig returns a per-minute limiter, or nil when REDIS_ADDR is empty.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*FixedWindowLimiter, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		logger.Info("REDIS_ADDR not set; rate limiting disabled")
		return nil, nil
	}
	return NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, defaultPrefix, cfg.RateLimitPerMinute, time.Minute, logger)
}

// Allow returns true when the key is within quota.
// On Redis failures it fails closed and returns false.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	hits, err := windowCounterScript.Run(ctx, l.redisClient, []string{l.bucketKey(key, l.now())}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("Rate limiter redis call failed; rejecting request", zap.String("key", key), zap.Error(err))
		return false
	}
	return hits <= int64(l.limit)
}

// bucketKey names the counter for key in the window containing at.
func (l *FixedWindowLimiter) bucketKey(key string, at time.Time) string {
	slot := at.UTC().UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", l.redisPrefix, key, slot)
}

// Close releases the Redis connection pool.
func (l *FixedWindowLimiter) Close() error {
	if l == nil {
		return nil
	}
	return l.redisClient.Close()
}
