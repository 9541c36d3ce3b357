// File: internal/indicator/repository.go
package indicator

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines data access for indicator records.
type Repository interface {
	Upsert(ctx context.Context, records []Record) error
	ListByCountry(ctx context.Context, countryCode string) ([]Record, error)
	List(ctx context.Context, countryCodes []string, yr *YearRange) ([]Record, error)
	// Replace swaps the whole table for records in one transaction.
	Replace(ctx context.Context, records []Record) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM indicator repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Upsert inserts records, replacing the fields of an existing (country, year) pair.
func (r *gormRepository) Upsert(ctx context.Context, records []Record) error {
	return upsertRecords(r.db.WithContext(ctx), records)
}

func upsertRecords(db *gorm.DB, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "country_code"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"country", "fields", "updated_at"}),
		}).
		CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("failed to upsert indicator records: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByCountry(ctx context.Context, countryCode string) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("country_code = ?", countryCode).
		Order("year ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list indicators for %s: %w", countryCode, err)
	}
	return records, nil
}

// List returns records of the given countries (all when empty), optionally within yr.
func (r *gormRepository) List(ctx context.Context, countryCodes []string, yr *YearRange) ([]Record, error) {
	q := r.db.WithContext(ctx).Model(&Record{})
	if len(countryCodes) > 0 {
		q = q.Where("country_code IN ?", countryCodes)
	}
	if yr != nil {
		n := yr.Normalized()
		q = q.Where("year BETWEEN ? AND ?", n.From, n.To)
	}
	var records []Record
	if err := q.Order("country_code ASC, year ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list indicator records: %w", err)
	}
	return records, nil
}

// Replace deletes every record and loads records in their place.
// Nothing is removed when the load fails.
func (r *gormRepository) Replace(ctx context.Context, records []Record) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{})
		if result.Error != nil {
			return fmt.Errorf("failed to clear indicator records: %w", result.Error)
		}
		removed = result.RowsAffected
		return upsertRecords(tx, records)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
