// File: internal/audit/model.go
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded in the trail.
const (
	ActionUploadApproved   = "upload_approved"
	ActionUploadRejected   = "upload_rejected"
	ActionReportPublished  = "report_published"
	ActionNotificationSent = "notification_sent"
	ActionProfilePromoted  = "profile_promoted"
	ActionIndicatorsSeeded = "indicators_seeded"
)

// Entry is one append-only audit record.
type Entry struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Actor       string     `gorm:"type:varchar(255);not null;index" json:"actor"`
	Action      string     `gorm:"type:varchar(64);not null;index" json:"action"`
	TargetTitle string     `gorm:"type:varchar(255)" json:"target_title"`
	TargetID    *uuid.UUID `gorm:"type:uuid;index" json:"target_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Entry) TableName() string {
	return "audit_log"
}
