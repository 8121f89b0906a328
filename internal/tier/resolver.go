package tier

import (
	"context"
	"time"

	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/types"
)

const DefaultTTL = 5 * time.Minute

// Resolver answers "what tier is this user" for renderers and the preview.
// Lookup failures resolve to free so exports stay watermarked.
type Resolver struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
	log      *logger.Logger
}

func NewResolver(cfg *config.Configuration, provider Provider, c cache.Cache, log *logger.Logger) *Resolver {
	ttl := DefaultTTL
	if cfg != nil && cfg.Cache.TierTTL > 0 {
		ttl = cfg.Cache.TierTTL
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Resolver{provider: provider, cache: c, ttl: ttl, log: log}
}

// Resolve never fails. Anonymous callers are free.
func (r *Resolver) Resolve(ctx context.Context, userID string) types.Tier {
	if userID == "" || r.provider == nil {
		return types.TierFree
	}

	key := cache.GenerateKey(cache.PrefixTier, userID)
	if r.cache != nil {
		span := cache.StartCacheSpan(ctx, "tier", "get", map[string]interface{}{"user_id": userID})
		v, ok := r.cache.Get(ctx, key)
		cache.SetSpanSuccess(span)
		cache.FinishSpan(span)
		if t, isTier := v.(types.Tier); ok && isTier {
			return t
		}
	}

	span := cache.StartCacheSpan(ctx, "tier", "lookup", map[string]interface{}{"user_id": userID})
	defer cache.FinishSpan(span)
	t, err := r.provider.Tier(ctx, userID)
	if err != nil {
		cache.SetSpanError(span, err)
		// not cached, the next request tries again
		r.log.Warnw("tier lookup failed, treating user as free", "user_id", userID, "error", err)
		return types.TierFree
	}

	cache.SetSpanSuccess(span)
	if r.cache != nil {
		r.cache.Set(ctx, key, t, r.ttl)
	}
	return t
}
