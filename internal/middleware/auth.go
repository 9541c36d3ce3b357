// File: internal/middleware/auth.go
package middleware

import (
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth creates a Gin middleware that resolves the Firebase bearer token into a session.
func Auth(resolver shared.SessionResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		token := common.GetTokenFromContext(c)
		if token == "" {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		session, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Session resolution failed", zap.Error(err))
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.SessionKey, session)
		if l, ok := c.Get(common.LoggerContextKey); ok {
			if reqLogger, ok := l.(*zap.Logger); ok {
				c.Set(common.LoggerContextKey, reqLogger.With(zap.String("uid", session.UID), zap.String("role", session.Role)))
			}
		}

		logger.Debug("Session resolved",
			zap.String("uid", session.UID),
			zap.String("role", session.Role),
			zap.String("country", session.CountryCode),
		)

		c.Next()
	}
}
