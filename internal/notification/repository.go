// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists notifications and per-user state.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, page, pageSize int) ([]Record, *common.Pagination, error)
	ListCandidates(ctx context.Context, email, countryCode string) ([]Record, error)
	StatesFor(ctx context.Context, email string, ids []uuid.UUID) (map[uuid.UUID]State, error)
	MarkRead(ctx context.Context, email string, ids []uuid.UUID, at time.Time) error
	MarkDeleted(ctx context.Context, email string, id uuid.UUID, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, record *Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var record Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Notification not found.")
		}
		return nil, fmt.Errorf("failed to find notification %s: %w", id, err)
	}
	return &record, nil
}

func (r *gormRepository) List(ctx context.Context, page, pageSize int) ([]Record, *common.Pagination, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Record{}).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting notifications failed: %w", err)
	}
	var records []Record
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(common.Offset(page, pageSize)).
		Find(&records).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching notifications failed: %w", err)
	}
	return records, common.NewPagination(total, page, pageSize), nil
}

// ListCandidates narrows notifications in SQL to those that may target the user.
// Country lists are matched exactly by Record.VisibleTo afterwards.
func (r *gormRepository) ListCandidates(ctx context.Context, email, countryCode string) ([]Record, error) {
	countryMatch, countryArg := "audience_countries LIKE ?", "%"+countryCode+"%"
	if r.db.Dialector.Name() == "postgres" {
		countryMatch, countryArg = "? = ANY(audience_countries)", countryCode
	}

	var records []Record
	err := r.db.WithContext(ctx).
		Where("audience_kind = ?", string(shared.AudienceAll)).
		Or("audience_kind = ? AND "+countryMatch, string(shared.AudienceCountries), countryArg).
		Or("audience_kind = ? AND audience_email = ?", string(shared.AudienceUser), email).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("fetching notifications for %s failed: %w", email, err)
	}
	return records, nil
}

func (r *gormRepository) StatesFor(ctx context.Context, email string, ids []uuid.UUID) (map[uuid.UUID]State, error) {
	out := make(map[uuid.UUID]State, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var states []State
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND notification_id IN ?", email, ids).
		Find(&states).Error
	if err != nil {
		return nil, fmt.Errorf("fetching notification states for %s failed: %w", email, err)
	}
	for _, s := range states {
		out[s.NotificationID] = s
	}
	return out, nil
}

// MarkRead upserts read state for every id in one statement.
func (r *gormRepository) MarkRead(ctx context.Context, email string, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	states := make([]State, 0, len(ids))
	for _, id := range ids {
		readAt := at
		states = append(states, State{NotificationID: id, UserEmail: email, ReadAt: &readAt, UpdatedAt: at})
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notification_id"}, {Name: "user_email"}},
		DoUpdates: clause.AssignmentColumns([]string{"read_at", "updated_at"}),
	}).Create(&states).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read for %s: %w", email, err)
	}
	return nil
}

// MarkDeleted upserts deleted state, leaving any read state intact.
func (r *gormRepository) MarkDeleted(ctx context.Context, email string, id uuid.UUID, at time.Time) error {
	state := State{NotificationID: id, UserEmail: email, DeletedAt: &at, UpdatedAt: at}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "notification_id"}, {Name: "user_email"}},
		DoUpdates: clause.AssignmentColumns([]string{"deleted_at", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("failed to delete notification %s for %s: %w", id, email, err)
	}
	return nil
}
