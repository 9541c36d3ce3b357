// File: internal/auth/model.go
package auth

import (
	"time"

	"ecowas_fisheries_backend/internal/shared"
	"ecowas_fisheries_backend/internal/user"
)

// SignUpRequest defines the structure for client sign-up requests.
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	CountryCode string `json:"country_code" binding:"required,country_code"`
}

// SignInRequest defines the structure for sign-in requests.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInResponse carries the provider tokens and the resolved session.
type SignInResponse struct {
	IDToken      string          `json:"id_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Session      *shared.Session `json:"session"`
}

// SignUpResponse is returned after a successful sign-up.
type SignUpResponse struct {
	Profile user.ProfileResponse `json:"profile"`
}
