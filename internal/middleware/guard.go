// File: internal/middleware/guard.go
package middleware

import (
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/guard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CountryGuard admits only clients of the country named by the :country route segment.
func CountryGuard(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := common.GetSessionFromContext(c)
		decision := guard.Decide(session, c.Param(common.CountryParam))
		if !decision.Allow {
			logger.Debug("Country route denied",
				zap.String("segment", c.Param(common.CountryParam)),
				zap.String("redirect_to", decision.RedirectTo),
			)
			common.RespondWithError(c, common.ErrForbidden.WithDetails(decision))
			return
		}
		c.Next()
	}
}

// AdminGuard admits only admin sessions.
func AdminGuard(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.DecideAdmin(common.GetSessionFromContext(c))
		if !decision.Allow {
			logger.Debug("Admin route denied", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrForbidden.WithDetails(decision))
			return
		}
		c.Next()
	}
}
