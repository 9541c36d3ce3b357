// File: internal/common/context_keys.go
package common

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// SessionKey is the context key for the signed-in shared.Session
	SessionKey = "session"
	// CountryParam is the route parameter carrying the tenant segment
	CountryParam = "country"
)
