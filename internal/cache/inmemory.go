package cache

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/docforge/internal/config"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is the default expiration time for cache entries
const DefaultExpiration = 30 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 10 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache   *goCache.Cache
	enabled bool
}

// NewInMemoryCache creates a new InMemoryCache instance. When caching is
// disabled in config, Get and Set become no-ops but Force* still work.
func NewInMemoryCache(cfg *config.Configuration) *InMemoryCache {
	return &InMemoryCache{
		cache:   goCache.New(DefaultExpiration, DefaultCleanupInterval),
		enabled: cfg == nil || cfg.Cache.Enabled,
	}
}

// Get retrieves a value from the cache
func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	return c.cache.Get(key)
}

// ForceCacheGet reads regardless of the enabled flag, for state that must
// live in memory such as rate limiter buckets
func (c *InMemoryCache) ForceCacheGet(_ context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// ForceCacheSet writes regardless of the enabled flag
func (c *InMemoryCache) ForceCacheSet(_ context.Context, key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

// ForceCacheAdd stores value only if key is absent and reports whether it did
func (c *InMemoryCache) ForceCacheAdd(_ context.Context, key string, value interface{}, expiration time.Duration) bool {
	return c.cache.Add(key, value, expiration) == nil
}

// Set adds a value to the cache with the specified expiration
func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	c.cache.Set(key, value, expiration)
}

// Delete removes a key from the cache
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

// DeleteByPrefix removes all keys with the given prefix
func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	// Get all items from the cache
	items := c.cache.Items()

	// Delete items with matching prefix
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			c.cache.Delete(k)
		}
	}
}

// Flush removes all items from the cache
func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}

// ItemCount returns the number of live entries
func (c *InMemoryCache) ItemCount() int {
	return c.cache.ItemCount()
}
