// File: internal/notification/service.go
package notification

import (
	"context"
	"strings"
	"time"

	"ecowas_fisheries_backend/internal/audit"
	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"
	"ecowas_fisheries_backend/internal/email"
	"ecowas_fisheries_backend/internal/platform/metrics"
	"ecowas_fisheries_backend/internal/push"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	Broadcast(ctx context.Context, actor string, req BroadcastRequest) (*BroadcastResult, error)
	ListAll(ctx context.Context, page, pageSize int) ([]Record, *common.Pagination, error)
	ListForUser(ctx context.Context, session *shared.Session) ([]ClientNotification, error)
	UnreadCount(ctx context.Context, session *shared.Session) (int, error)
	MarkRead(ctx context.Context, session *shared.Session, id uuid.UUID) error
	MarkAllRead(ctx context.Context, session *shared.Session) (int, error)
	Delete(ctx context.Context, session *shared.Session, id uuid.UUID) error
}

type service struct {
	repo      Repository
	directory shared.ProfileDirectory
	pusher    push.Sender
	mailer    email.Sender
	audit     audit.Service
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new notification service.
func NewService(
	repo Repository,
	directory shared.ProfileDirectory,
	pusher push.Sender,
	mailer email.Sender,
	auditService audit.Service,
	logger *zap.Logger,
) Service {
	return &service{
		repo:      repo,
		directory: directory,
		pusher:    pusher,
		mailer:    mailer,
		audit:     auditService,
		logger:    logger.Named("NotificationService"),
		now:       time.Now,
	}
}

// audienceFromRequest validates the target and normalizes country codes.
func audienceFromRequest(req BroadcastRequest) (shared.Audience, error) {
	switch shared.AudienceKind(req.Audience) {
	case shared.AudienceAll:
		return shared.Audience{Kind: shared.AudienceAll}, nil
	case shared.AudienceCountries:
		seen := make(map[string]bool, len(req.Countries))
		var codes []string
		for _, c := range req.Countries {
			code := country.Normalize(c)
			if code == "" {
				return shared.Audience{}, common.NewValidationAPIError(map[string]string{"countries": "Unknown country: " + c})
			}
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			return shared.Audience{}, common.NewValidationAPIError(map[string]string{"countries": "At least one country is required for a country audience."})
		}
		return shared.Audience{Kind: shared.AudienceCountries, Countries: codes}, nil
	case shared.AudienceUser:
		addr := strings.ToLower(strings.TrimSpace(req.Email))
		if addr == "" {
			return shared.Audience{}, common.NewValidationAPIError(map[string]string{"email": "The email field is required for a user audience."})
		}
		return shared.Audience{Kind: shared.AudienceUser, Email: addr}, nil
	}
	return shared.Audience{}, common.NewValidationAPIError(map[string]string{"audience": "The audience field must be one of: all country user."})
}

// Broadcast resolves the recipients, stores the notification and fans it out one request per recipient.
// Delivery failures are counted, never returned.
func (s *service) Broadcast(ctx context.Context, actor string, req BroadcastRequest) (*BroadcastResult, error) {
	audience, err := audienceFromRequest(req)
	if err != nil {
		return nil, err
	}

	recipients, err := s.directory.Recipients(ctx, audience)
	if err != nil {
		s.logger.Error("Failed to resolve notification recipients", zap.String("audience", string(audience.Kind)), zap.Error(err))
		return nil, err
	}

	record := &Record{
		Title:             strings.TrimSpace(req.Title),
		Message:           strings.TrimSpace(req.Message),
		AudienceKind:      string(audience.Kind),
		AudienceCountries: pq.StringArray(audience.Countries),
		AudienceEmail:     audience.Email,
		CreatedBy:         actor,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	metrics.FanoutRecipients.Observe(float64(len(recipients)))

	result := &BroadcastResult{Notification: record, Recipients: len(recipients)}
	s.fanOutPush(ctx, record, recipients, result)
	if req.SendEmail {
		s.fanOutEmail(ctx, record, recipients, result)
	}

	_, auditErr := s.audit.Record(ctx, actor, audit.ActionNotificationSent, record.Title, &record.ID)
	metrics.RecordDispatch(metrics.ChannelAudit, auditErr)

	s.logger.Info("Notification broadcast",
		zap.String("notification_id", record.ID.String()),
		zap.String("audience", record.AudienceKind),
		zap.Int("recipients", result.Recipients),
		zap.Int("push_succeeded", result.PushSucceeded),
		zap.Int("email_succeeded", result.EmailSucceeded),
	)
	return result, nil
}

func (s *service) fanOutPush(ctx context.Context, record *Record, recipients []shared.Recipient, result *BroadcastResult) {
	sent := make(map[string]bool)
	for _, r := range recipients {
		if !r.NotifyPush || r.PushToken == "" || sent[r.PushToken] {
			continue
		}
		sent[r.PushToken] = true
		result.PushAttempted++
		err := s.pusher.Send(ctx, push.Message{
			Token: r.PushToken,
			Title: record.Title,
			Body:  record.Message,
			Data:  map[string]string{"notification_id": record.ID.String()},
		})
		metrics.RecordDispatch(metrics.ChannelPush, err)
		if err != nil {
			s.logger.Warn("Push delivery failed", zap.String("recipient", r.Email), zap.Error(err))
			continue
		}
		result.PushSucceeded++
	}
}

func (s *service) fanOutEmail(ctx context.Context, record *Record, recipients []shared.Recipient, result *BroadcastResult) {
	sent := make(map[string]bool)
	for _, r := range recipients {
		if !r.NotifyEmail || r.Email == "" || sent[r.Email] {
			continue
		}
		sent[r.Email] = true
		result.EmailAttempted++
		msg, err := email.BroadcastMessage(r.Email, email.Broadcast{Title: record.Title, Message: record.Message})
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		metrics.RecordDispatch(metrics.ChannelEmail, err)
		if err != nil {
			s.logger.Warn("Email delivery failed", zap.String("recipient", r.Email), zap.Error(err))
			continue
		}
		result.EmailSucceeded++
	}
}

func (s *service) ListAll(ctx context.Context, page, pageSize int) ([]Record, *common.Pagination, error) {
	return s.repo.List(ctx, page, pageSize)
}

// visible returns the notifications shown to the session with their state, newest first.
func (s *service) visible(ctx context.Context, session *shared.Session) ([]Record, map[uuid.UUID]State, error) {
	candidates, err := s.repo.ListCandidates(ctx, session.Email, session.CountryCode)
	if err != nil {
		return nil, nil, err
	}
	records := candidates[:0]
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, r := range candidates {
		if r.VisibleTo(session.Email, session.CountryCode) {
			records = append(records, r)
			ids = append(ids, r.ID)
		}
	}
	states, err := s.repo.StatesFor(ctx, session.Email, ids)
	if err != nil {
		return nil, nil, err
	}

	shown := records[:0]
	for _, r := range records {
		if st, ok := states[r.ID]; ok && st.DeletedAt != nil {
			continue
		}
		shown = append(shown, r)
	}
	return shown, states, nil
}

func (s *service) ListForUser(ctx context.Context, session *shared.Session) ([]ClientNotification, error) {
	records, states, err := s.visible(ctx, session)
	if err != nil {
		return nil, err
	}
	out := make([]ClientNotification, 0, len(records))
	for _, r := range records {
		st, ok := states[r.ID]
		out = append(out, ClientNotification{
			ID:        r.ID,
			Title:     r.Title,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
			Read:      ok && st.ReadAt != nil,
		})
	}
	return out, nil
}

func (s *service) UnreadCount(ctx context.Context, session *shared.Session) (int, error) {
	records, states, err := s.visible(ctx, session)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, r := range records {
		if st, ok := states[r.ID]; !ok || st.ReadAt == nil {
			unread++
		}
	}
	return unread, nil
}

// findVisible loads id and checks that the session is in its audience.
func (s *service) findVisible(ctx context.Context, session *shared.Session, id uuid.UUID) (*Record, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.VisibleTo(session.Email, session.CountryCode) {
		return nil, common.ErrNotFound.WithDetails("Notification not found.")
	}
	return record, nil
}

func (s *service) MarkRead(ctx context.Context, session *shared.Session, id uuid.UUID) error {
	if _, err := s.findVisible(ctx, session, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, session.Email, []uuid.UUID{id}, s.now().UTC())
}

func (s *service) MarkAllRead(ctx context.Context, session *shared.Session) (int, error) {
	records, states, err := s.visible(ctx, session)
	if err != nil {
		return 0, err
	}
	var ids []uuid.UUID
	for _, r := range records {
		if st, ok := states[r.ID]; !ok || st.ReadAt == nil {
			ids = append(ids, r.ID)
		}
	}
	if err := s.repo.MarkRead(ctx, session.Email, ids, s.now().UTC()); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *service) Delete(ctx context.Context, session *shared.Session, id uuid.UUID) error {
	if _, err := s.findVisible(ctx, session, id); err != nil {
		return err
	}
	return s.repo.MarkDeleted(ctx, session.Email, id, s.now().UTC())
}
