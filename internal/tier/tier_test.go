package tier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/httpclient"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	tier  types.Tier
	err   error
	calls int
}

func (p *countingProvider) Tier(context.Context, string) (types.Tier, error) {
	p.calls++
	return p.tier, p.err
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]string{"alice", " bob "})
	ctx := context.Background()

	got, err := p.Tier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.TierPremium, got)

	got, _ = p.Tier(ctx, "bob")
	assert.Equal(t, types.TierPremium, got)

	got, _ = p.Tier(ctx, "carol")
	assert.Equal(t, types.TierFree, got)
}

func TestRemoteProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("user_id") {
		case "alice":
			_, _ = w.Write([]byte(`{"tier":"premium"}`))
		case "broken":
			_, _ = w.Write([]byte(`not json`))
		case "gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{"tier":"gold"}`))
		}
	}))
	defer srv.Close()

	p := NewRemoteProvider(httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: time.Second}), srv.URL+"/v1/tier")
	ctx := context.Background()

	got, err := p.Tier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.TierPremium, got)

	got, err = p.Tier(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, types.TierFree, got, "unknown tiers are free")

	_, err = p.Tier(ctx, "broken")
	assert.Error(t, err)

	_, err = p.Tier(ctx, "gone")
	assert.Error(t, err)
}

func TestResolver_CachesSuccessfulLookups(t *testing.T) {
	provider := &countingProvider{tier: types.TierPremium}
	r := NewResolver(nil, provider, cache.NewInMemoryCache(nil), nil)
	ctx := context.Background()

	assert.Equal(t, types.TierPremium, r.Resolve(ctx, "alice"))
	assert.Equal(t, types.TierPremium, r.Resolve(ctx, "alice"))
	assert.Equal(t, 1, provider.calls)
}

func TestResolver_FailsClosed(t *testing.T) {
	provider := &countingProvider{tier: types.TierPremium, err: errors.New("timeout")}
	r := NewResolver(nil, provider, cache.NewInMemoryCache(nil), nil)
	ctx := context.Background()

	assert.Equal(t, types.TierFree, r.Resolve(ctx, "alice"))
	assert.Equal(t, types.TierFree, r.Resolve(ctx, "alice"))
	assert.Equal(t, 2, provider.calls, "failures are not cached")

	provider.err = nil
	assert.Equal(t, types.TierPremium, r.Resolve(ctx, "alice"))
}

func TestResolver_AnonymousIsFree(t *testing.T) {
	provider := &countingProvider{tier: types.TierPremium}
	r := NewResolver(nil, provider, nil, nil)

	assert.Equal(t, types.TierFree, r.Resolve(context.Background(), ""))
	assert.Zero(t, provider.calls)
}

func TestNewProvider(t *testing.T) {
	cfg := &config.Configuration{}
	cfg.Tier.PremiumUsers = []string{"alice"}
	assert.IsType(t, &StaticProvider{}, NewProvider(cfg))

	cfg.Tier.Provider = ProviderRemote
	cfg.Tier.RemoteURL = "http://localhost:1/tier"
	assert.IsType(t, &RemoteProvider{}, NewProvider(cfg))
}
