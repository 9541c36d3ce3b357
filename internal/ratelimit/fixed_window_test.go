// File: internal/ratelimit/fixed_window_test.go
package ratelimit

import (
	"context"
	"testing"
	"time"

	"ecowas_fisheries_backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Second, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"), "first request should pass")
	assert.True(t, limiter.Allow(ctx, "ip-1"), "second request should pass")
	assert.False(t, limiter.Allow(ctx, "ip-1"), "third request should be blocked")
	assert.True(t, limiter.Allow(ctx, "ip-2"), "other keys have their own window")
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Second, zap.NewNop())
	require.NoError(t, err)
	redis.Close()

	assert.False(t, limiter.Allow(context.Background(), "ip-1"), "limiter should fail closed on redis errors")
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, limiter)
}

func TestNewFromConfig_DisabledWithoutRedis(t *testing.T) {
	limiter, err := NewFromConfig(&config.Config{RateLimitPerMinute: 30}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, limiter)
}

func TestFixedWindowLimiter_WindowRollsOver(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Minute, zap.NewNop())
	require.NoError(t, err)
	start := time.Date(2025, 3, 1, 12, 0, 10, 0, time.UTC)
	limiter.now = func() time.Time { return start }
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"))
	assert.False(t, limiter.Allow(ctx, "ip-1"))

	bucket := limiter.bucketKey("ip-1", start)
	assert.Equal(t, "1", mustGet(t, redis, bucket))
	assert.Equal(t, time.Minute, redis.TTL(bucket), "the first hit arms the bucket expiry")

	limiter.now = func() time.Time { return start.Add(time.Minute) }
	assert.True(t, limiter.Allow(ctx, "ip-1"), "a new window starts a new count")
}

func TestFixedWindowLimiter_BlankKeySharesBucket(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "", 1, time.Minute, zap.NewNop())
	require.NoError(t, err)
	at := time.Now()
	limiter.now = func() time.Time { return at }

	assert.True(t, limiter.Allow(context.Background(), " "))
	assert.False(t, limiter.Allow(context.Background(), ""))
	assert.True(t, redis.Exists(limiter.bucketKey("unknown", at)))
	assert.Contains(t, limiter.bucketKey("unknown", at), defaultPrefix+":unknown:")
}

func mustGet(t *testing.T, redis *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := redis.Get(key)
	require.NoError(t, err)
	return v
}
