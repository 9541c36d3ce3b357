// File: internal/user/model.go
package user

import (
	"strings"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
)

// Profile is the stored UserProfile. Profiles are never deleted in-app.
type Profile struct {
	common.BaseModel
	FirebaseUID     string `gorm:"type:varchar(128);uniqueIndex;not null"`
	Email           string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role            string `gorm:"type:varchar(20);not null;index"`
	CountryCode     string `gorm:"type:varchar(8);index"`
	FirstName       string `gorm:"type:varchar(100)"`
	LastName        string `gorm:"type:varchar(100)"`
	NotifyEmail     bool   `gorm:"not null"`
	NotifyPush      bool   `gorm:"not null"`
	PushToken       string `gorm:"type:text"`
	ProfileImageURL string `gorm:"type:text"`
	ProfileImageKey string `gorm:"type:text"`
}

// TableName specifies the table name for the Profile model.
func (Profile) TableName() string {
	return "user_profiles"
}

// DisplayName joins first and last name, falling back to the email.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// Session builds the request session for this profile.
func (p *Profile) Session() *shared.Session {
	return &shared.Session{
		UID:         p.FirebaseUID,
		ProfileID:   p.ID,
		Email:       p.Email,
		Role:        p.Role,
		CountryCode: p.CountryCode,
		DisplayName: p.DisplayName(),
	}
}

// --- DTOs ---

// ProfileResponse is the API shape of a profile.
type ProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	CountryCode     string    `json:"country_code,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	NotifyEmail     bool      `json:"notify_email"`
	NotifyPush      bool      `json:"notify_push"`
	HasPushToken    bool      `json:"has_push_token"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToProfileResponse converts a Profile model to a ProfileResponse DTO.
func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID,
		Email:           p.Email,
		Role:            p.Role,
		CountryCode:     p.CountryCode,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		NotifyEmail:     p.NotifyEmail,
		NotifyPush:      p.NotifyPush,
		HasPushToken:    p.PushToken != "",
		ProfileImageURL: p.ProfileImageURL,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// UpdateSettingsRequest edits names and notification preferences.
type UpdateSettingsRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	NotifyEmail *bool   `json:"notify_email"`
	NotifyPush  *bool   `json:"notify_push"`
}

// PushTokenRequest registers (or clears, when empty) the device token.
type PushTokenRequest struct {
	Token string `json:"token" binding:"max=4096"`
}

// NewClientProfile is the input for creating a client profile at sign-up.
type NewClientProfile struct {
	FirebaseUID string
	Email       string
	FirstName   string
	LastName    string
	CountryCode string
}

// ListFilter narrows an admin profile listing.
type ListFilter struct {
	Role      string
	Countries []string
}
