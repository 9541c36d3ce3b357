// File: internal/audit/repository.go
package audit

import (
	"context"
	"fmt"

	"ecowas_fisheries_backend/internal/common"

	"gorm.io/gorm"
)

// Repository persists audit entries. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Entry, *common.Pagination, error)
}

// ListFilter narrows an audit listing.
type ListFilter struct {
	Actor  string
	Action string
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM audit repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, entry *Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Entry, *common.Pagination, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Entry{})
		if filter.Actor != "" {
			q = q.Where("actor = ?", filter.Actor)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("counting audit entries failed: %w", err)
	}

	var entries []Entry
	err := scoped().
		Order("created_at DESC").
		Limit(pageSize).
		Offset(common.Offset(page, pageSize)).
		Find(&entries).Error
	if err != nil {
		return nil, nil, fmt.Errorf("fetching audit entries failed: %w", err)
	}
	return entries, common.NewPagination(total, page, pageSize), nil
}
