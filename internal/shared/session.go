// File: internal/shared/session.go
package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Roles a profile can hold.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Session is the signed-in identity attached to a request.
// It is built once per sign-in from the verified Firebase token and the stored profile.
type Session struct {
	UID         string    `json:"uid"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CountryCode string    `json:"country_code"`
	DisplayName string    `json:"display_name"`
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// IsClientOf reports whether the session is a client bound to countryCode.
func (s *Session) IsClientOf(countryCode string) bool {
	if s == nil || s.Role != RoleClient {
		return false
	}
	return strings.EqualFold(s.CountryCode, strings.TrimSpace(countryCode))
}

// SessionResolver turns a bearer token into a Session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, idToken string) (*Session, error)
}
