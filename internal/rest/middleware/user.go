package middleware

import (
	"strings"

	"github.com/flexprice/docforge/internal/types"
	"github.com/gin-gonic/gin"
)

// UserIDMiddleware reads the caller identity from X-User-ID. Requests without
// one are anonymous and resolve to the free tier.
func UserIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	if userID := strings.TrimSpace(c.GetHeader(types.HeaderUserID)); userID != "" {
		ctx = types.WithUserID(ctx, userID)
	}
	ctx = types.WithClientIP(ctx, c.ClientIP())
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
