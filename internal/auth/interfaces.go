// File: internal/auth/interfaces.go
package auth

import (
	"context"

	"ecowas_fisheries_backend/internal/firebase"
	"ecowas_fisheries_backend/internal/user"

	fbauth "firebase.google.com/go/v4/auth"
)

// IdentityProvider is the subset of the Firebase service used for identities.
// Implemented by firebase.FirebaseService.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	SignInWithPassword(ctx context.Context, email, password string) (*firebase.SignInResult, error)
}

// ProfileProvider defines the profile operations needed by the auth service.
// Implemented by user.ServiceImplementation.
type ProfileProvider interface {
	CreateClientProfile(ctx context.Context, in user.NewClientProfile) (*user.Profile, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*user.Profile, error)
}
