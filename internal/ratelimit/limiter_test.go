package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(perMinute, burst int) (*Limiter, *time.Time) {
	cfg := &config.Configuration{}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = perMinute
	cfg.RateLimit.Burst = burst

	l := NewLimiter(cfg, cache.NewInMemoryCache(nil))
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_BurstThenRejects(t *testing.T) {
	l, _ := testLimiter(60, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "u1").Allowed, "request %d", i)
	}
	d := l.Allow(ctx, "u1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 60, d.Limit)
	assert.InDelta(t, time.Second.Seconds(), d.RetryAfter.Seconds(), 0.01)
	assert.Equal(t, 1, d.RetryAfterSeconds())
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	l, now := testLimiter(60, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "u1").Allowed)
	require.False(t, l.Allow(ctx, "u1").Allowed)

	*now = now.Add(time.Second)
	assert.True(t, l.Allow(ctx, "u1").Allowed)
}

func TestLimiter_RejectedRequestsDoNotConsumeTokens(t *testing.T) {
	l, now := testLimiter(60, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "u1").Allowed)
	for i := 0; i < 5; i++ {
		require.False(t, l.Allow(ctx, "u1").Allowed)
	}
	*now = now.Add(time.Second)
	assert.True(t, l.Allow(ctx, "u1").Allowed)
}

func TestLimiter_IdentifiersAreIndependent(t *testing.T) {
	l, _ := testLimiter(60, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "u1").Allowed)
	assert.False(t, l.Allow(ctx, "u1").Allowed)
	assert.True(t, l.Allow(ctx, "u2").Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := &config.Configuration{}
	cfg.RateLimit.Burst = 1
	l := NewLimiter(cfg, cache.NewInMemoryCache(nil))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(ctx, "u1").Allowed)
	}
}

func TestLimiter_ConcurrentCallersShareABucket(t *testing.T) {
	l, _ := testLimiter(60, 5)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "u1").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
}
