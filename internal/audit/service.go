// File: internal/audit/service.go
package audit

import (
	"context"
	"time"

	"ecowas_fisheries_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service records and lists audit entries.
type Service interface {
	Record(ctx context.Context, actor, action, targetTitle string, targetID *uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Entry, *common.Pagination, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("AuditService"), now: time.Now}
}

// Record appends one entry stamped with the current time.
func (s *service) Record(ctx context.Context, actor, action, targetTitle string, targetID *uuid.UUID) (*Entry, error) {
	entry := &Entry{
		ID:          uuid.New(),
		Actor:       actor,
		Action:      action,
		TargetTitle: targetTitle,
		TargetID:    targetID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record audit entry", zap.String("action", action), zap.String("actor", actor), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Entry, *common.Pagination, error) {
	return s.repo.List(ctx, filter, page, pageSize)
}
