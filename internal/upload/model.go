// File: internal/upload/model.go
package upload

import (
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/notification"

	"github.com/google/uuid"
)

// Status is the review state of an upload.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three review states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is allowed.
// Only pending uploads move, and approved and rejected are terminal.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// Record is a submitted or published report file.
type Record struct {
	common.BaseModel
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Country       string     `gorm:"type:varchar(8);not null;index" json:"country"`
	UploaderEmail string     `gorm:"type:varchar(255);index" json:"uploader_email"`
	UploaderUID   string     `gorm:"type:varchar(128)" json:"-"`
	FileURL       string     `gorm:"type:text;not null" json:"file_url"`
	ObjectKey     string     `gorm:"type:text" json:"-"`
	ContentType   string     `gorm:"type:varchar(128)" json:"content_type"`
	SizeBytes     int64      `json:"size_bytes"`
	Period        string     `gorm:"type:varchar(7);index" json:"period,omitempty"`
	Status        Status     `gorm:"type:varchar(16);not null;index" json:"status"`
	ReviewedBy    string     `gorm:"type:varchar(255)" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

// TableName specifies the table name for GORM.
func (Record) TableName() string {
	return "uploads"
}

// DownloadLogEntry records one report download.
type DownloadLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UploadID  uuid.UUID `gorm:"type:uuid;not null;index" json:"upload_id"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Country   string    `gorm:"type:varchar(8);not null;index" json:"country"`
	CreatedAt time.Time `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for GORM.
func (DownloadLogEntry) TableName() string {
	return "download_log"
}

// --- DTOs ---

// CreateRequest is the multipart form of a client upload. The file travels in "file".
type CreateRequest struct {
	Title         string `form:"title" binding:"required,max=255"`
	Period        string `form:"period" binding:"required,datetime=2006-01"`
	TargetCountry string `form:"target_country" binding:"omitempty,country_code"`
}

// PublishRequest is the multipart form of an admin-published report.
type PublishRequest struct {
	Title     string `form:"title" binding:"required,max=255"`
	Country   string `form:"country" binding:"required"`
	Period    string `form:"period" binding:"omitempty,datetime=2006-01"`
	Message   string `form:"message" binding:"max=4000"`
	SendEmail bool   `form:"send_email"`
}

// TransitionRequest moves a pending upload to a terminal state.
type TransitionRequest struct {
	Status Status `json:"status" binding:"required,oneof=approved rejected"`
}

// ListFilter narrows an admin listing.
type ListFilter struct {
	Status  Status
	Country string
}

// PublishResult is the stored report and the outcome of its broadcast.
type PublishResult struct {
	Record    *Record                       `json:"record"`
	Broadcast *notification.BroadcastResult `json:"broadcast,omitempty"`
}

// DownloadResponse carries the durable file URL.
type DownloadResponse struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
