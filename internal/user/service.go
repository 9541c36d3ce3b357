// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"ecowas_fisheries_backend/internal/common"
	"ecowas_fisheries_backend/internal/country"
	"ecowas_fisheries_backend/internal/filestorage"
	"ecowas_fisheries_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the profile use-case layer.
type Service interface {
	shared.ProfileDirectory

	CreateClientProfile(ctx context.Context, in NewClientProfile) (*Profile, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, req UpdateSettingsRequest) (*Profile, error)
	SetPushToken(ctx context.Context, id uuid.UUID, token string) (*Profile, error)
	SetProfileImage(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (*Profile, error)
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Profile, *common.Pagination, error)
	PromoteToAdmin(ctx context.Context, email string) (*Profile, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	store  filestorage.ObjectStore
	logger *zap.Logger
}

// NewService creates a new profile service.
func NewService(repo Repository, store filestorage.ObjectStore, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, store: store, logger: logger.Named("UserService")}
}

var _ Service = (*ServiceImplementation)(nil)

// CreateClientProfile stores a new client profile with notifications enabled.
func (s *ServiceImplementation) CreateClientProfile(ctx context.Context, in NewClientProfile) (*Profile, error) {
	code := country.Normalize(in.CountryCode)
	if code == "" {
		return nil, common.NewValidationAPIError(map[string]string{"CountryCode": "The country_code field must be an ECOWAS member country code."})
	}
	p := &Profile{
		FirebaseUID: in.FirebaseUID,
		Email:       in.Email,
		Role:        shared.RoleClient,
		CountryCode: code,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		NotifyEmail: true,
		NotifyPush:  true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Client profile created", zap.String("profile_id", p.ID.String()), zap.String("country", code))
	return p, nil
}

// GetByFirebaseUID loads the profile of a Firebase identity.
func (s *ServiceImplementation) GetByFirebaseUID(ctx context.Context, uid string) (*Profile, error) {
	return s.repo.FindByFirebaseUID(ctx, uid)
}

// GetByID loads a profile.
func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateSettings applies the non-nil fields of req.
func (s *ServiceImplementation) UpdateSettings(ctx context.Context, id uuid.UUID, req UpdateSettingsRequest) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		p.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		p.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.NotifyEmail != nil {
		p.NotifyEmail = *req.NotifyEmail
	}
	if req.NotifyPush != nil {
		p.NotifyPush = *req.NotifyPush
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPushToken stores the device token. An empty token unregisters the device.
func (s *ServiceImplementation) SetPushToken(ctx context.Context, id uuid.UUID, token string) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.PushToken = strings.TrimSpace(token)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProfileImage stores a new avatar and removes the previous one.
func (s *ServiceImplementation) SetProfileImage(ctx context.Context, id uuid.UUID, fileHeader *multipart.FileHeader) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := filestorage.SaveUploadedFile(ctx, s.store, fileHeader, "avatars", p.DisplayName(), filestorage.ImageTypes)
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedType) {
			return nil, common.ErrBadRequest.WithDetails("Profile images must be PNG, JPEG, GIF or WebP.")
		}
		return nil, fmt.Errorf("store profile image: %w", err)
	}

	previous := p.ProfileImageKey
	p.ProfileImageURL = obj.URL
	p.ProfileImageKey = obj.Key
	if err := s.repo.Update(ctx, p); err != nil {
		_ = s.store.Delete(ctx, obj.Key)
		return nil, err
	}
	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous profile image", zap.String("key", previous), zap.Error(err))
		}
	}
	return p, nil
}

// List returns a page of profiles.
func (s *ServiceImplementation) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]Profile, *common.Pagination, error) {
	return s.repo.List(ctx, filter, page, pageSize)
}

// PromoteToAdmin grants the admin role to the profile with email.
func (s *ServiceImplementation) PromoteToAdmin(ctx context.Context, email string) (*Profile, error) {
	p, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p.Role == shared.RoleAdmin {
		return p, nil
	}
	p.Role = shared.RoleAdmin
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Profile promoted to admin", zap.String("profile_id", p.ID.String()))
	return p, nil
}

// Recipients resolves an audience to client contact data.
func (s *ServiceImplementation) Recipients(ctx context.Context, audience shared.Audience) ([]shared.Recipient, error) {
	var profiles []Profile
	switch audience.Kind {
	case shared.AudienceAll:
		all, err := s.repo.FindByRole(ctx, shared.RoleClient, nil)
		if err != nil {
			return nil, err
		}
		profiles = all
	case shared.AudienceCountries:
		codes := make([]string, 0, len(audience.Countries))
		for _, c := range audience.Countries {
			if code := country.Normalize(c); code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) == 0 {
			return nil, nil
		}
		matched, err := s.repo.FindByRole(ctx, shared.RoleClient, codes)
		if err != nil {
			return nil, err
		}
		profiles = matched
	case shared.AudienceUser:
		p, err := s.repo.FindByEmail(ctx, audience.Email)
		if err != nil {
			if apiErr, ok := common.IsAPIError(err); ok && apiErr.Code == common.ErrNotFound.Code {
				return nil, nil
			}
			return nil, err
		}
		profiles = []Profile{*p}
	default:
		return nil, fmt.Errorf("unknown audience kind %q", audience.Kind)
	}

	out := make([]shared.Recipient, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, shared.Recipient{
			Email:       p.Email,
			CountryCode: p.CountryCode,
			PushToken:   p.PushToken,
			NotifyEmail: p.NotifyEmail,
			NotifyPush:  p.NotifyPush,
		})
	}
	return out, nil
}

// ContactByEmail returns the contact data of the profile with email.
func (s *ServiceImplementation) ContactByEmail(ctx context.Context, email string) (*shared.Contact, error) {
	p, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &shared.Contact{Email: p.Email, CountryCode: p.CountryCode, PushToken: p.PushToken}, nil
}

// AdminEmails lists the email of every admin.
func (s *ServiceImplementation) AdminEmails(ctx context.Context) ([]string, error) {
	admins, err := s.repo.FindByRole(ctx, shared.RoleAdmin, nil)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	return emails, nil
}
