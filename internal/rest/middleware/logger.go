package middleware

import (
	"time"

	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/types"
	"github.com/gin-gonic/gin"
)

// LoggingMiddleware writes one structured line per request
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
		}
		if userID := types.GetUserID(c.Request.Context()); userID != "" {
			fields = append(fields, "user_id", userID)
		}
		if c.FullPath() == "/health" {
			log.Debugw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
