// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"ecowas_fisheries_backend/internal/config"
)

// FirebaseService wraps the Firebase Admin SDK clients used by the backend:
// Authentication for identities and Cloud Messaging for push delivery.
type FirebaseService struct {
	authClient      *auth.Client
	messagingClient *messaging.Client
	identity        *IdentityToolkit
	logger          *zap.Logger
}

// NewFirebaseService initializes the Firebase Admin SDK from the service account key.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firebase Messaging client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseService{
		authClient:      authClient,
		messagingClient: messagingClient,
		identity:        NewIdentityToolkit(cfg.FirebaseAuthBaseURL, cfg.FirebaseWebAPIKey, logger),
		logger:          logger,
	}, nil
}

// VerifyIDToken verifies a Firebase ID token and returns the token claims.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}
	return token, nil
}

// CreateUser registers an email/password identity and returns its UID.
func (s *FirebaseService) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("failed to create Firebase user: %w", err)
	}
	s.logger.Info("Firebase user created", zap.String("uid", record.UID))
	return record.UID, nil
}

// DeleteUser removes an identity. Used to roll back a failed sign-up.
func (s *FirebaseService) DeleteUser(ctx context.Context, uid string) error {
	if err := s.authClient.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete Firebase user %s: %w", uid, err)
	}
	return nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *FirebaseService) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// SignInWithPassword exchanges credentials for Firebase tokens.
func (s *FirebaseService) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	return s.identity.SignInWithPassword(ctx, email, password)
}

// Messaging exposes the Cloud Messaging client for push delivery.
func (s *FirebaseService) Messaging() *messaging.Client {
	return s.messagingClient
}
