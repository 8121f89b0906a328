package tier

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/flexprice/docforge/internal/config"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/httpclient"
	"github.com/flexprice/docforge/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

const (
	ProviderStatic = "static"
	ProviderRemote = "remote"
)

// Provider looks up the subscription tier of a user
type Provider interface {
	Tier(ctx context.Context, userID string) (types.Tier, error)
}

// StaticProvider reads premium users from configuration
type StaticProvider struct {
	premium map[string]struct{}
}

func NewStaticProvider(premiumUsers []string) *StaticProvider {
	return &StaticProvider{
		premium: lo.SliceToMap(premiumUsers, func(id string) (string, struct{}) {
			return strings.TrimSpace(id), struct{}{}
		}),
	}
}

func (p *StaticProvider) Tier(_ context.Context, userID string) (types.Tier, error) {
	if _, ok := p.premium[userID]; ok {
		return types.TierPremium, nil
	}
	return types.TierFree, nil
}

// RemoteProvider asks a subscription service over HTTP.
//
//	GET {url}?user_id={id}  ->  {"tier": "premium"}
type RemoteProvider struct {
	client httpclient.Client
	url    string
}

type remoteResponse struct {
	Tier string `json:"tier"`
}

func NewRemoteProvider(client httpclient.Client, baseURL string) *RemoteProvider {
	return &RemoteProvider{client: client, url: baseURL}
}

func (p *RemoteProvider) Tier(ctx context.Context, userID string) (types.Tier, error) {
	u, err := url.Parse(p.url)
	if err != nil {
		return types.TierFree, ierr.WithError(err).
			WithHint("Tier lookup is misconfigured").
			Mark(ierr.ErrHTTPClient)
	}
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	resp, err := p.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     u.String(),
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return types.TierFree, err
	}

	var body remoteResponse
	if err := jsoniter.Unmarshal(resp.Body, &body); err != nil {
		return types.TierFree, ierr.WithError(err).
			WithHint("Tier lookup returned an unreadable response").
			Mark(ierr.ErrHTTPClient)
	}
	return types.ParseTier(body.Tier), nil
}

// NewProvider picks the provider named in configuration
func NewProvider(cfg *config.Configuration) Provider {
	if cfg.Tier.Provider == ProviderRemote {
		client := httpclient.NewDefaultClient(httpclient.ClientConfig{
			Timeout:  cfg.Tier.Timeout,
			RetryMax: cfg.Tier.RetryMax,
		})
		return NewRemoteProvider(client, cfg.Tier.RemoteURL)
	}
	return NewStaticProvider(cfg.Tier.PremiumUsers)
}
