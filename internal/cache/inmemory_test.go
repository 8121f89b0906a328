package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(nil)

	c.Set(ctx, GenerateKey(PrefixTier, "u1"), "premium", time.Minute)
	v, ok := c.Get(ctx, "tier:v1::u1")
	assert.True(t, ok)
	assert.Equal(t, "premium", v)

	c.Set(ctx, GenerateKey(PrefixSession, "a"), 1, 0)
	c.Set(ctx, GenerateKey(PrefixSession, "b"), 2, 0)
	c.DeleteByPrefix(ctx, PrefixSession)
	_, ok = c.Get(ctx, GenerateKey(PrefixSession, "a"))
	assert.False(t, ok)
	assert.Equal(t, 1, c.ItemCount())

	c.Flush(ctx)
	assert.Zero(t, c.ItemCount())
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	c := NewInMemoryCache(cfg)

	c.Set(ctx, "k", "v", time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.ForceCacheSet(ctx, "k", "v", time.Minute)
	v, ok := c.ForceCacheGet(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	assert.False(t, c.ForceCacheAdd(ctx, "k", "w", time.Minute))
	assert.True(t, c.ForceCacheAdd(ctx, "k2", "w", time.Minute))
}
