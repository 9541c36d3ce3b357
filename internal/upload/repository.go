// File: internal/upload/repository.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines data access for uploads and the download log.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Record, error)
	ListByUploader(ctx context.Context, email string) ([]Record, error)
	ListApprovedFor(ctx context.Context, countryCode string) ([]Record, error)
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Record, *common.Pagination, error)
	Transition(ctx context.Context, id uuid.UUID, to Status, reviewer string, at time.Time) error
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]Record, error)
	FindAllForSync(ctx context.Context, offset, limit int) ([]Record, error)
	CreateDownload(ctx context.Context, entry *DownloadLogEntry) error
	ListDownloads(ctx context.Context, countryCode string, page, pageSize int) ([]DownloadLogEntry, *common.Pagination, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM upload repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, record *Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var record Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Upload not found.")
		}
		return nil, fmt.Errorf("failed to find upload %s: %w", id, err)
	}
	return &record, nil
}

// FindByIDs returns the records in the order of ids, skipping missing ones.
func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []Record
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load uploads by id: %w", err)
	}
	byID := make(map[uuid.UUID]Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}
	ordered := make([]Record, 0, len(records))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered, nil
}

func (r *gormRepository) ListByUploader(ctx context.Context, email string) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("uploader_email = ?", email).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads for %s: %w", email, err)
	}
	return records, nil
}

// ListApprovedFor returns approved reports for the country plus those sent to every country.
func (r *gormRepository) ListApprovedFor(ctx context.Context, countryCode string) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("status = ? AND country IN ?", StatusApproved, []string{countryCode, country.AllCountries}).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for %s: %w", countryCode, err)
	}
	return records, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Record, *common.Pagination, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Record{})
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Country != "" {
			q = q.Where("country = ?", filter.Country)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting uploads failed: %w", err)
	}
	var records []Record
	err := scoped().
		Order("created_at DESC").
		Limit(pageSize).
		Offset(common.Offset(page, pageSize)).
		Find(&records).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching uploads failed: %w", err)
	}
	return records, common.NewPagination(total, page, pageSize), nil
}

// Transition moves a pending record to `to`. The status is re-checked in the
// UPDATE itself, so a record reviewed concurrently yields a conflict.
func (r *gormRepository) Transition(ctx context.Context, id uuid.UUID, to Status, reviewer string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":      to,
			"reviewed_by": reviewer,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update upload %s status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrConflict.WithDetails("Upload has already been reviewed.")
	}
	return nil
}

func (r *gormRepository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending uploads: %w", err)
	}
	return records, nil
}

func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uploads for sync: %w", err)
	}
	return records, nil
}

func (r *gormRepository) CreateDownload(ctx context.Context, entry *DownloadLogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log download: %w", err)
	}
	return nil
}

func (r *gormRepository) ListDownloads(ctx context.Context, countryCode string, page, pageSize int) ([]DownloadLogEntry, *common.Pagination, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&DownloadLogEntry{})
		if countryCode != "" {
			q = q.Where("country = ?", countryCode)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting downloads failed: %w", err)
	}
	var entries []DownloadLogEntry
	err := scoped().
		Order("created_at DESC").
		Limit(pageSize).
		Offset(common.Offset(page, pageSize)).
		Find(&entries).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching downloads failed: %w", err)
	}
	return entries, common.NewPagination(total, page, pageSize), nil
}
