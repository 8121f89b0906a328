package middleware

import (
	"net/http"
	"strings"

	"github.com/flexprice/docforge/internal/types"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowHeaders = strings.Join([]string{
		"Content-Type",
		"Authorization",
		types.HeaderUserID,
		types.HeaderRequestID,
	}, ", ")

	// browsers hide response headers that are not listed here
	corsExposeHeaders = strings.Join([]string{
		"Content-Disposition",
		types.HeaderPageCount,
		types.HeaderHistoryID,
		types.HeaderRequestID,
		types.HeaderRetry,
		"X-RateLimit-Limit",
	}, ", ")
)

// CORSMiddleware handles CORS headers
func CORSMiddleware(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
	c.Writer.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
	c.Writer.Header().Set("Access-Control-Max-Age", "86400")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
