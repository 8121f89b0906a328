package api

import (
	v1 "github.com/flexprice/docforge/internal/api/v1"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/ratelimit"
	"github.com/flexprice/docforge/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Document *v1.DocumentHandler
	Template *v1.TemplateHandler
	History  *v1.HistoryHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, limiter *ratelimit.Limiter) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(cfg),
		middleware.LoggingMiddleware(logger),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	public := router.Group("/v1", middleware.UserIDMiddleware)
	public.GET("/health", handlers.Health.Health)

	documents := public.Group("/documents", middleware.RateLimitMiddleware(limiter, logger))
	{
		documents.POST("/validate", handlers.Document.ValidateDocument)
		documents.POST("/totals", handlers.Document.CalculateTotals)
		documents.POST("/pdf", handlers.Document.RenderPDF)
	}

	templates := public.Group("/templates")
	{
		templates.GET("", handlers.Template.ListTemplates)
		templates.GET("/:id", handlers.Template.GetTemplate)
	}

	history := public.Group("/history")
	{
		history.GET("", handlers.History.ListHistory)
		history.GET("/:id", handlers.History.GetHistory)
		history.GET("/:id/pdf", handlers.History.DownloadArchive)
		history.DELETE("/:id", handlers.History.DeleteHistory)
	}

	return router
}
