package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return New(client, limit, window), s
}

func TestAllowUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res := limiter.Allow(ctx, "10.0.0.1")
		require.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, res.Limit)
		assert.Equal(t, 5-(i+1), res.Remaining)
	}

	res := limiter.Allow(ctx, "10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.False(t, res.ResetAt.Before(time.Now()))
}

func TestDeniedRequestNotRecorded(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "10.0.0.1").Allowed)

	// rejections must not extend the window
	for i := 0; i < 3; i++ {
		res := limiter.Allow(ctx, "10.0.0.1")
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "10.0.0.1").Allowed)
	require.False(t, limiter.Allow(ctx, "10.0.0.1").Allowed)

	assert.True(t, limiter.Allow(ctx, "10.0.0.2").Allowed)
}

func TestWindowSlides(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, 50*time.Millisecond)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "10.0.0.1").Allowed)
	require.False(t, limiter.Allow(ctx, "10.0.0.1").Allowed)

	time.Sleep(60 * time.Millisecond)

	assert.True(t, limiter.Allow(ctx, "10.0.0.1").Allowed)
}

func TestFailOpenWhenStoreDown(t *testing.T) {
	limiter, s := newTestLimiter(t, 5, time.Minute)
	s.Close()

	res := limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, res.Allowed)
	assert.Equal(t, 5, res.Limit)
	assert.Equal(t, 4, res.Remaining)
}

func TestRetryAfter(t *testing.T) {
	now := time.Now()

	res := &Result{ResetAt: now.Add(30 * time.Second)}
	assert.Equal(t, 30*time.Second, res.RetryAfter(now))

	stale := &Result{ResetAt: now.Add(-time.Second)}
	assert.Equal(t, time.Duration(0), stale.RetryAfter(now))
}
