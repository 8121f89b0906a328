package service

import (
	"context"

	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/domain/template"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/postgres"
	"github.com/flexprice/docforge/internal/pyroscope"
	"github.com/flexprice/docforge/internal/s3"
	"github.com/flexprice/docforge/internal/sentry"
	"github.com/flexprice/docforge/internal/tier"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
)

// TierResolver reports the subscription tier of a user. *tier.Resolver
// satisfies it.
type TierResolver interface {
	Resolve(ctx context.Context, userID string) types.Tier
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger    *logger.Logger
	Config    *config.Configuration
	DB        postgres.IClient
	Validator *validation.Validator
	Templates template.Registry
	Renderers *pdfgen.Renderers
	Tier      TierResolver
	S3        s3.Service
	Sentry    *sentry.Service
	Pyroscope *pyroscope.Service

	// Repositories
	HistoryRepo history.Repository
}

// NewServiceParams creates a new ServiceParams instance
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	templates template.Registry,
	renderers *pdfgen.Renderers,
	tierResolver *tier.Resolver,
	s3Service s3.Service,
	sentryService *sentry.Service,
	pyroscopeService *pyroscope.Service,
	historyRepo history.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		DB:          db,
		Validator:   validation.New(config.Render.MaxLogoBytes),
		Templates:   templates,
		Renderers:   renderers,
		Tier:        tierResolver,
		S3:          s3Service,
		Sentry:      sentryService,
		Pyroscope:   pyroscopeService,
		HistoryRepo: historyRepo,
	}
}

// withTx runs fn in a transaction when a client is configured
func (p ServiceParams) withTx(ctx context.Context, fn func(context.Context) error) error {
	if p.DB == nil {
		return fn(ctx)
	}
	return p.DB.WithTx(ctx, fn)
}

// withStorageSpan runs fn inside a Sentry storage span when Sentry is configured
func (p ServiceParams) withStorageSpan(ctx context.Context, operation string, params map[string]interface{}, fn func(context.Context) error) (err error) {
	if p.Sentry != nil {
		span, spanCtx := p.Sentry.StartStorageSpan(ctx, operation, params)
		ctx = spanCtx
		defer func() { sentry.FinishSpan(span, err) }()
	}
	return fn(ctx)
}
