package middleware

import (
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceID returns Gin middleware to handle trace IDs for observability.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.Request.Header.Get(pkg.HeaderTraceId)
		if utils.IsEmpty(traceID) {
			traceID = uuid.New().String()
		}
		// Set in gin context for handlers and in the request context for services
		c.Set(pkg.TraceId, traceID)
		c.Request = c.Request.WithContext(utils.WithTraceID(c.Request.Context(), traceID))
		// Propagate in the response header for clients/downstream tracing
		c.Writer.Header().Set(pkg.HeaderTraceId, traceID)
		c.Next()
	}
}
