// File: internal/email/console.go
package email

import (
	"context"
	"net/mail"
	"sync"

	"go.uber.org/zap"
)

// ConsoleSender logs messages instead of delivering them. It keeps what it
// sent so development tooling and tests can inspect it.
type ConsoleSender struct {
	from   mail.Address
	logger *zap.Logger

	mu   sync.Mutex
	sent []Message
}

// NewConsoleSender creates a logging sender.
func NewConsoleSender(from mail.Address, logger *zap.Logger) *ConsoleSender {
	return &ConsoleSender{from: from, logger: logger.Named("console_email")}
}

// Send logs msg.
func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("Email (console driver)",
		zap.String("from", s.from.String()),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the messages sent so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
