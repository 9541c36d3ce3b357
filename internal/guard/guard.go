// File: internal/guard/guard.go
package guard

import (
	"strings"

	"ecowas_fisheries_backend/internal/shared"
)

// AdminLoginPath is where non-admins are sent from admin routes.
const AdminLoginPath = "/admin/login"

// Decision is the outcome of a route check.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Decide checks access to a country-scoped route.
// Only a client whose country matches the segment passes. Everyone else,
// including signed-out visitors, is sent to the requested segment's login page.
func Decide(session *shared.Session, segment string) Decision {
	segment = strings.ToLower(strings.TrimSpace(segment))
	if session != nil &&
		session.Role == shared.RoleClient &&
		strings.ToLower(session.CountryCode) == segment {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: LoginPath(segment)}
}

// DecideAdmin checks access to an admin route.
func DecideAdmin(session *shared.Session) Decision {
	if session.IsAdmin() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: AdminLoginPath}
}

// LoginPath returns the login page of a country segment.
func LoginPath(segment string) string {
	return "/" + strings.ToLower(strings.TrimSpace(segment)) + "/login"
}
