// File: internal/common/context_helpers.go
package common

import (
	"strings"

	"ecowas_fisheries_backend/internal/shared"

	"github.com/gin-gonic/gin"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header.
// Returns an empty string if not found.
func GetTokenFromContext(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetSessionFromContext returns the session set by the auth middleware, or nil.
func GetSessionFromContext(c *gin.Context) *shared.Session {
	val, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	session, ok := val.(*shared.Session)
	if !ok {
		return nil
	}
	return session
}

// RequireSession returns the session or responds 401 and returns nil.
func RequireSession(c *gin.Context) *shared.Session {
	session := GetSessionFromContext(c)
	if session == nil {
		RespondWithError(c, ErrUnauthorized.WithDetails("No active session."))
	}
	return session
}
