// File: internal/firebase/identity_toolkit.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and disabled accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists is returned when signing up with a registered email.
	ErrEmailExists = errors.New("email already registered")
	// ErrThrottled is returned when the provider rate-limits sign-in attempts.
	ErrThrottled = errors.New("too many sign-in attempts")
)

// SignInResult holds the tokens returned by a password sign-in.
type SignInResult struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IdentityToolkit calls the Firebase Auth REST API for the flows the Admin SDK lacks.
type IdentityToolkit struct {
	client *resty.Client
	apiKey string
	logger *zap.Logger
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewIdentityToolkit creates a REST client for baseURL (normally identitytoolkit.googleapis.com).
func NewIdentityToolkit(baseURL, apiKey string, logger *zap.Logger) *IdentityToolkit {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	return &IdentityToolkit{client: client, apiKey: apiKey, logger: logger.Named("identity_toolkit")}
}

// SignInWithPassword verifies credentials and returns fresh tokens.
func (t *IdentityToolkit) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_WEB_API_KEY is not configured")
	}

	var out signInResponse
	var apiErr toolkitError
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("key", t.apiKey).
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/accounts:signInWithPassword")
	if err != nil {
		return nil, fmt.Errorf("identity toolkit sign-in: %w", err)
	}
	if resp.IsError() {
		return nil, mapToolkitError(resp.StatusCode(), apiErr.Error.Message)
	}

	expiresIn, err := strconv.Atoi(out.ExpiresIn)
	if err != nil {
		expiresIn = 3600
	}
	return &SignInResult{
		UID:          out.LocalID,
		Email:        out.Email,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second).UTC(),
	}, nil
}

func mapToolkitError(status int, message string) error {
	// Messages may carry a suffix, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrThrottled
	case "EMAIL_EXISTS":
		return ErrEmailExists
	}
	return fmt.Errorf("identity toolkit returned %d: %s", status, message)
}
