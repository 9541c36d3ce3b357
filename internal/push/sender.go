// File: internal/push/sender.go
package push

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecowas_fisheries_backend/internal/config"
	"ecowas_fisheries_backend/internal/firebase"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// ErrNoTarget is returned when a message has neither a token nor a topic.
var ErrNoTarget = errors.New("push message needs a token or a topic")

// Message is one push request. Exactly one of Token or Topic is set.
type Message struct {
	Token string
	Topic string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a single push message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// CountryTopic is the topic every client device of a country subscribes to.
func CountryTopic(countryCode string) string {
	return "country-" + strings.ToLower(strings.TrimSpace(countryCode))
}

// NewSender returns the FCM sender, or a logging sender when PUSH_ENABLED is false.
func NewSender(cfg *config.Config, fb *firebase.FirebaseService, logger *zap.Logger) Sender {
	if !cfg.PushEnabled || fb == nil {
		logger.Info("Push delivery disabled, messages will only be logged.")
		return NewLogSender(logger)
	}
	return NewFCMSender(fb.Messaging(), logger)
}

// messagingClient is the part of *messaging.Client used here.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers through Firebase Cloud Messaging.
type FCMSender struct {
	client messagingClient
	logger *zap.Logger
}

// NewFCMSender wraps a messaging client.
func NewFCMSender(client messagingClient, logger *zap.Logger) *FCMSender {
	return &FCMSender{client: client, logger: logger.Named("fcm")}
}

// Send issues one FCM request.
func (s *FCMSender) Send(ctx context.Context, msg Message) error {
	if msg.Token == "" && msg.Topic == "" {
		return ErrNoTarget
	}
	fcmMsg := &messaging.Message{
		Token: msg.Token,
		Topic: msg.Topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}
	if msg.Token != "" {
		fcmMsg.Topic = ""
	}
	id, err := s.client.Send(ctx, fcmMsg)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	s.logger.Debug("Push sent", zap.String("message_id", id), zap.String("topic", fcmMsg.Topic))
	return nil
}

// LogSender only logs messages.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("push_log")}
}

// Send logs msg.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.Token == "" && msg.Topic == "" {
		return ErrNoTarget
	}
	s.logger.Info("Push (disabled)",
		zap.Bool("has_token", msg.Token != ""),
		zap.String("topic", msg.Topic),
		zap.String("title", msg.Title),
	)
	return nil
}
