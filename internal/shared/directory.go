// File: internal/shared/directory.go
package shared

import "context"

// AudienceKind selects who receives a notification.
type AudienceKind string

const (
	AudienceAll       AudienceKind = "all"
	AudienceCountries AudienceKind = "country"
	AudienceUser      AudienceKind = "user"
)

// Audience is a resolved notification target.
type Audience struct {
	Kind      AudienceKind `json:"kind"`
	Countries []string     `json:"countries,omitempty"`
	Email     string       `json:"email,omitempty"`
}

// Recipient is the contact data of one profile as seen by the fan-out.
type Recipient struct {
	Email       string
	CountryCode string
	PushToken   string
	NotifyEmail bool
	NotifyPush  bool
}

// Contact is the subset of a profile used for transition side effects.
type Contact struct {
	Email       string
	CountryCode string
	PushToken   string
}

// ProfileDirectory resolves recipients from stored profiles.
type ProfileDirectory interface {
	Recipients(ctx context.Context, audience Audience) ([]Recipient, error)
	ContactByEmail(ctx context.Context, email string) (*Contact, error)
	AdminEmails(ctx context.Context) ([]string, error)
}
