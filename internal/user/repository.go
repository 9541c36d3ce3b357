// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecowas_fisheries_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Profile, *common.Pagination, error)
	FindByRole(ctx context.Context, role string, countries []string) ([]Profile, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Create inserts a new profile.
func (r *gormRepository) Create(ctx context.Context, profile *Profile) error {
	profile.Email = normalizeEmail(profile.Email)
	profile.CountryCode = strings.ToLower(profile.CountryCode)
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("A profile with this email already exists.")
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// FindByEmail retrieves a profile by email address.
func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found with this email.")
		}
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	return &p, nil
}

// FindByFirebaseUID retrieves a profile by its Firebase UID.
func (r *gormRepository) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found with this Firebase UID.")
		}
		return nil, fmt.Errorf("find profile by uid: %w", err)
	}
	return &p, nil
}

// FindByID retrieves a profile by ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found with this ID.")
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &p, nil
}

// Update saves every column of profile.
func (r *gormRepository) Update(ctx context.Context, profile *Profile) error {
	profile.Email = normalizeEmail(profile.Email)
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return common.ErrConflict.WithDetails("Update failed: email already taken.")
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *gormRepository) filtered(ctx context.Context, role string, countries []string) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Profile{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if len(countries) > 0 {
		q = q.Where("country_code IN ?", countries)
	}
	return q
}

// List returns a page of profiles ordered by email.
func (r *gormRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Profile, *common.Pagination, error) {
	var total int64
	if err := r.filtered(ctx, filter.Role, filter.Countries).Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("count profiles: %w", err)
	}

	var profiles []Profile
	err := r.filtered(ctx, filter.Role, filter.Countries).
		Order("email ASC").
		Limit(pageSize).
		Offset(common.Offset(page, pageSize)).
		Find(&profiles).Error
	if err != nil {
		return nil, nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, common.NewPagination(total, page, pageSize), nil
}

// FindByRole returns every profile with role, optionally limited to countries.
func (r *gormRepository) FindByRole(ctx context.Context, role string, countries []string) ([]Profile, error) {
	var profiles []Profile
	if err := r.filtered(ctx, role, countries).Order("email ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("find %s profiles: %w", role, err)
	}
	return profiles, nil
}
