// File: internal/email/sender.go
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"ecowas_fisheries_backend/internal/config"

	"go.uber.org/zap"
)

// ErrNoRecipients is returned when a message has nowhere to go.
var ErrNoRecipients = errors.New("email has no recipients")

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
	}
	if strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.HTML) == "" {
		return errors.New("email has no content")
	}
	return nil
}

// Sender delivers email. Implementations send synchronously and report failure.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the sender selected by EMAIL_DRIVER.
func NewSender(cfg *config.Config, logger *zap.Logger) Sender {
	from := mail.Address{Name: cfg.EmailFromName, Address: cfg.EmailFromAddress}
	if cfg.EmailDriver == "sendgrid" {
		return NewSendGridSender(cfg.SendGridAPIKey, from, logger)
	}
	return NewConsoleSender(from, logger)
}
