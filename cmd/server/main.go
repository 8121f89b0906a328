package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/docforge/internal/api"
	v1 "github.com/flexprice/docforge/internal/api/v1"
	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/template"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/postgres"
	"github.com/flexprice/docforge/internal/pyroscope"
	"github.com/flexprice/docforge/internal/ratelimit"
	"github.com/flexprice/docforge/internal/repository"
	"github.com/flexprice/docforge/internal/s3"
	"github.com/flexprice/docforge/internal/sentry"
	"github.com/flexprice/docforge/internal/service"
	"github.com/flexprice/docforge/internal/tier"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validator"
	"github.com/flexprice/docforge/internal/watermark"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title DocForge API
// @version 1.0
// @description Financial document rendering service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,
			pyroscope.NewPyroscopeService,

			// Cache
			cache.Initialize,
			provideCache,

			// Postgres, only when history is kept there
			provideDB,
			provideDBClient,

			// Repositories
			repository.NewHistoryRepository,

			// Collaborators
			tier.NewProvider,
			tier.NewResolver,
			provideLimiter,
			s3.NewService,

			// Rendering
			template.NewRegistry,
			provideLayoutBuilder,
			watermark.NewPolicy,
			provideRenderers,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewHistoryService,
			service.NewDocumentService,
			service.NewTemplateService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			pyroscope.RegisterHooks,
			registerTrackingHook,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideCache(c *cache.InMemoryCache) cache.Cache {
	return c
}

func provideDB(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	if cfg.History.Store != string(repository.PostgresRepo) {
		return nil, nil
	}
	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing history database")
			db.Close()
			return nil
		},
	})
	return db, nil
}

func provideDBClient(db *postgres.DB, sentryService *sentry.Service, log *logger.Logger) postgres.IClient {
	var client postgres.IClient = postgres.NewNoopClient()
	if db != nil {
		client = db
	}
	return postgres.NewSentryClient(client, sentryService, log)
}

func provideLimiter(cfg *config.Configuration, c *cache.InMemoryCache) *ratelimit.Limiter {
	return ratelimit.NewLimiter(cfg, c)
}

func provideLayoutBuilder() *layout.Builder {
	return layout.NewBuilder(layout.NewMeasurer())
}

func provideRenderers(
	cfg *config.Configuration,
	builder *layout.Builder,
	policy *watermark.Policy,
	log *logger.Logger,
) (*pdfgen.Renderers, error) {
	capture, err := pdfgen.NewCaptureRenderer(cfg, builder, policy, log)
	if err != nil {
		return nil, err
	}
	return &pdfgen.Renderers{
		Programmatic: pdfgen.NewProgrammaticRenderer(cfg, builder, policy, log),
		Capture:      capture,
	}, nil
}

func provideHandlers(
	logger *logger.Logger,
	documentService service.DocumentService,
	templateService service.TemplateService,
	historyService service.HistoryService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Document: v1.NewDocumentHandler(documentService, logger),
		Template: v1.NewTemplateHandler(templateService, logger),
		History:  v1.NewHistoryHandler(historyService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, limiter *ratelimit.Limiter) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, limiter)
}

// registerTrackingHook drains background history writes. fx runs stop hooks
// in reverse, so this runs after the server stops taking requests.
func registerTrackingHook(lc fx.Lifecycle, documentService service.DocumentService, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("waiting for history writes")
			return documentService.Wait(ctx)
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			timeout := cfg.Server.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
