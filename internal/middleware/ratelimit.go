// File: internal/middleware/ratelimit.go
package middleware

import (
	"context"

	"ecowas_fisheries_backend/internal/common"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether a keyed request is within quota.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit rejects requests over quota with 429. Keys are scope plus client IP.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP()) {
			common.RespondWithError(c, common.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
