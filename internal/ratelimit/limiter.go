package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/config"
	"golang.org/x/time/rate"
)

const (
	DefaultRequestsPerMinute = 30
	DefaultBurst             = 10
	DefaultIdleTTL           = 10 * time.Minute
)

// Store keeps one bucket per identifier. *cache.InMemoryCache satisfies it.
type Store interface {
	ForceCacheGet(ctx context.Context, key string) (interface{}, bool)
	ForceCacheAdd(ctx context.Context, key string, value interface{}, expiration time.Duration) bool
	ForceCacheSet(ctx context.Context, key string, value interface{}, expiration time.Duration)
}

// Decision is the outcome of one check
type Decision struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1
func (d Decision) RetryAfterSeconds() int {
	s := int(math.Ceil(d.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// Limiter is a token bucket per caller identifier. Buckets idle longer than
// the TTL are evicted by the store.
type Limiter struct {
	store   Store
	enabled bool
	limit   rate.Limit
	perMin  int
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func NewLimiter(cfg *config.Configuration, store Store) *Limiter {
	l := &Limiter{
		store:   store,
		enabled: true,
		perMin:  DefaultRequestsPerMinute,
		burst:   DefaultBurst,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
	}
	if cfg != nil {
		rl := cfg.RateLimit
		l.enabled = rl.Enabled
		if rl.RequestsPerMinute > 0 {
			l.perMin = rl.RequestsPerMinute
		}
		if rl.Burst > 0 {
			l.burst = rl.Burst
		}
		if rl.IdleTTL > 0 {
			l.idleTTL = rl.IdleTTL
		}
	}
	l.limit = rate.Limit(float64(l.perMin) / 60)
	return l
}

// Allow takes one token for id
func (l *Limiter) Allow(ctx context.Context, id string) Decision {
	if !l.enabled {
		return Decision{Allowed: true, Limit: l.perMin}
	}

	bucket := l.bucket(ctx, id)
	now := l.now()
	r := bucket.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Limit: l.perMin, RetryAfter: time.Minute}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Limit: l.perMin, RetryAfter: delay}
	}
	return Decision{Allowed: true, Limit: l.perMin}
}

func (l *Limiter) bucket(ctx context.Context, id string) *rate.Limiter {
	key := cache.GenerateKey(cache.PrefixRateLimit, id)
	if v, ok := l.store.ForceCacheGet(ctx, key); ok {
		if b, ok := v.(*rate.Limiter); ok {
			// refresh the idle expiry
			l.store.ForceCacheSet(ctx, key, b, l.idleTTL)
			return b
		}
	}
	b := rate.NewLimiter(l.limit, l.burst)
	if l.store.ForceCacheAdd(ctx, key, b, l.idleTTL) {
		return b
	}
	// another request created it first
	if v, ok := l.store.ForceCacheGet(ctx, key); ok {
		if existing, ok := v.(*rate.Limiter); ok {
			return existing
		}
	}
	return b
}
