package postgres

import (
	"context"

	"github.com/flexprice/docforge/internal/logger"
	sentryService "github.com/flexprice/docforge/internal/sentry"
)

// SentryClient wraps a client with Sentry monitoring
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

// NewSentryClient creates a new Sentry-instrumented client
func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction with Sentry span tracking
func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) (err error) {
	if c.sentry == nil {
		return c.client.WithTx(ctx, fn)
	}
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
	})
	defer func() { sentryService.FinishSpan(span, err) }()

	return c.client.WithTx(spanCtx, fn)
}
