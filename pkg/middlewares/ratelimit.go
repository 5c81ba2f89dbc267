package middleware

import (
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit rejects requests with APP_RATE_LIMITED once the limiter runs out of tokens.
func RateLimit(logger *zap.Logger, limiter *pkg.DistributedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.Request.Context()) {
			c.Next()
			return
		}
		traceID := c.GetString(pkg.TraceId)
		resp := pkg.ToErrorResponse(logger, traceID, pkg.NewAppError(pkg.ErrRateLimitedCode, pkg.ErrRateLimitedCode.Message, pkg.ErrRateLimitExceeded))
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}
