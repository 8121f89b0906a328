package middleware

import (
	"strconv"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/ratelimit"
	"github.com/flexprice/docforge/internal/types"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware throttles per user id, falling back to the client ip
// for anonymous callers. Rejections carry Retry-After.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := types.GetUserID(ctx)
		if id == "" {
			id = "ip:" + c.ClientIP()
		}

		d := limiter.Allow(ctx, id)
		if d.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		}
		if d.Allowed {
			c.Next()
			return
		}

		log.Debugw("rate limited", "caller", id, "retry_after", d.RetryAfter)
		c.Header(types.HeaderRetry, strconv.Itoa(d.RetryAfterSeconds()))
		_ = c.Error(ierr.NewError("rate limit exceeded").
			WithHint("Too many requests. Please wait before trying again.").
			WithReportableDetails(map[string]any{"retry_after_seconds": d.RetryAfterSeconds()}).
			Mark(ierr.ErrTooManyRequests))
		c.Abort()
	}
}
