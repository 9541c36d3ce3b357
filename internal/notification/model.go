// File: internal/notification/model.go
package notification

import (
	"strings"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Record is a stored notification. It is never removed; per-user state hides it.
type Record struct {
	common.BaseModel
	Title             string         `gorm:"type:varchar(200);not null" json:"title"`
	Message           string         `gorm:"type:text;not null" json:"message"`
	AudienceKind      string         `gorm:"type:varchar(16);not null;index" json:"audience_kind"`
	AudienceCountries pq.StringArray `gorm:"type:text[]" json:"audience_countries,omitempty"`
	AudienceEmail     string         `gorm:"type:varchar(255);index" json:"audience_email,omitempty"`
	CreatedBy         string         `gorm:"type:varchar(255);not null" json:"created_by"`
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "notifications"
}

// Audience rebuilds the target stored on the record.
func (r *Record) Audience() shared.Audience {
	a := shared.Audience{Kind: shared.AudienceKind(r.AudienceKind), Email: r.AudienceEmail}
	if len(r.AudienceCountries) > 0 {
		a.Countries = []string(r.AudienceCountries)
	}
	return a
}

// VisibleTo reports whether a client with email and countryCode is in the audience.
func (r *Record) VisibleTo(email, countryCode string) bool {
	switch shared.AudienceKind(r.AudienceKind) {
	case shared.AudienceAll:
		return true
	case shared.AudienceCountries:
		for _, c := range r.Audience().Countries {
			if country.Same(c, countryCode) {
				return true
			}
		}
	case shared.AudienceUser:
		return strings.EqualFold(r.AudienceEmail, email)
	}
	return false
}

// State is the read/deleted state of one notification for one user.
type State struct {
	NotificationID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserEmail      string     `gorm:"type:varchar(255);primaryKey"`
	ReadAt         *time.Time `gorm:"index"`
	DeletedAt      *time.Time `gorm:"index"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (State) TableName() string {
	return "notification_states"
}

// --- DTOs ---

// BroadcastRequest is the admin input for a new notification.
type BroadcastRequest struct {
	Title     string   `json:"title" binding:"required,max=200"`
	Message   string   `json:"message" binding:"required,max=4000"`
	Audience  string   `json:"audience" binding:"required,oneof=all country user"`
	Countries []string `json:"countries" binding:"omitempty,dive,country_code"`
	Email     string   `json:"email" binding:"omitempty,email"`
	SendEmail bool     `json:"send_email"`
}

// BroadcastResult reports the final success counts of a fan-out.
type BroadcastResult struct {
	Notification   *Record `json:"notification"`
	Recipients     int     `json:"recipients"`
	PushAttempted  int     `json:"push_attempted"`
	PushSucceeded  int     `json:"push_succeeded"`
	EmailAttempted int     `json:"email_attempted"`
	EmailSucceeded int     `json:"email_succeeded"`
}

// ClientNotification is a notification as shown to one client.
type ClientNotification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
