// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/firebase"
	"ecowas_fisheries_backend/internal/shared"
	"ecowas_fisheries_backend/internal/user"

	"go.uber.org/zap"
)

// Service handles sign-up, sign-in and session resolution.
type Service interface {
	shared.SessionResolver

	SignUp(ctx context.Context, req SignUpRequest) (*user.Profile, error)
	SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	SignOut(ctx context.Context, session *shared.Session) error
}

// ServiceImplementation implements Service on top of Firebase and the profile store.
type ServiceImplementation struct {
	identity IdentityProvider
	profiles ProfileProvider
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new auth service.
func NewService(identity IdentityProvider, profiles ProfileProvider, sessions SessionStore, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		identity: identity,
		profiles: profiles,
		sessions: sessions,
		logger:   logger.Named("AuthService"),
		now:      time.Now,
	}
}

var _ Service = (*ServiceImplementation)(nil)

// SignUp creates the Firebase identity and then the client profile.
// The identity is deleted again when the profile cannot be stored.
func (s *ServiceImplementation) SignUp(ctx context.Context, req SignUpRequest) (*user.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.FirstName + " " + req.LastName)

	uid, err := s.identity.CreateUser(ctx, email, req.Password, displayName)
	if err != nil {
		if errors.Is(err, firebase.ErrEmailExists) {
			return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	profile, err := s.profiles.CreateClientProfile(ctx, user.NewClientProfile{
		FirebaseUID: uid,
		Email:       email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		if delErr := s.identity.DeleteUser(ctx, uid); delErr != nil {
			s.logger.Error("Failed to roll back Firebase user after profile write failure",
				zap.String("uid", uid), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Client signed up", zap.String("uid", uid), zap.String("country", profile.CountryCode))
	return profile, nil
}

// SignIn verifies credentials with the provider and builds the session.
func (s *ServiceImplementation) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	result, err := s.identity.SignInWithPassword(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, firebase.ErrInvalidCredentials):
			return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		case errors.Is(err, firebase.ErrThrottled):
			return nil, common.ErrTooManyRequests.WithDetails("Too many sign-in attempts. Try again later.")
		}
		return nil, fmt.Errorf("password sign-in: %w", err)
	}

	session, err := s.loadSession(ctx, result.UID)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)

	return &SignInResponse{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
		Session:      session,
	}, nil
}

// SignOut drops the cached session and revokes the refresh tokens.
// ID tokens issued up to this point stop resolving.
func (s *ServiceImplementation) SignOut(ctx context.Context, session *shared.Session) error {
	if session == nil {
		return common.ErrUnauthorized
	}
	s.sessions.Revoke(session.UID, s.now())
	if err := s.identity.RevokeRefreshTokens(ctx, session.UID); err != nil {
		return err
	}
	s.logger.Info("Session signed out", zap.String("uid", session.UID))
	return nil
}

// ResolveSession verifies a Firebase ID token and returns the matching session.
func (s *ServiceImplementation) ResolveSession(ctx context.Context, idToken string) (*shared.Session, error) {
	token, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired token.")
	}
	if revokedAt, ok := s.sessions.RevokedAt(token.UID); ok && token.IssuedAt <= revokedAt.Unix() {
		return nil, common.ErrUnauthorized.WithDetails("Session has been signed out.")
	}
	if cached, ok := s.sessions.Get(token.UID); ok {
		return cached, nil
	}

	session, err := s.loadSession(ctx, token.UID)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)
	return session, nil
}

func (s *ServiceImplementation) loadSession(ctx context.Context, uid string) (*shared.Session, error) {
	profile, err := s.profiles.GetByFirebaseUID(ctx, uid)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.Code == common.ErrNotFound.Code {
			s.logger.Warn("Verified identity has no profile", zap.String("uid", uid))
			return nil, common.ErrUnauthorized.WithDetails("No profile is registered for this account.")
		}
		return nil, err
	}
	return profile.Session(), nil
}
