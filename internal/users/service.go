package users

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
)

// UpdateProfileInput carries optional profile changes. Nil fields are left
// alone; an empty string clears the field.
type UpdateProfileInput struct {
	Phone   *string `json:"phone,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
	Resume  *string `json:"resume,omitempty"`
	Website *string `json:"website,omitempty"`
}

func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Phone, is.E164.Error("phone must be in E.164 format")),
		validation.Field(&in.Avatar, is.URL),
		validation.Field(&in.Resume, validation.Length(0, 2000)),
		validation.Field(&in.Website, is.URL),
	)
}

// ProfileService serves the /me/profile endpoints and admin role changes.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	ChangeRole(ctx context.Context, actorID, targetID uuid.UUID, role enums.UserRole) (*ProfileDTO, error)
}

type profileService struct {
	db   *db.Client
	logg *logger.Logger
}

func NewProfileService(client *db.Client, logg *logger.Logger) (ProfileService, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &profileService{db: client, logg: logg}, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	return s.load(ctx, NewRepository(s.db.DB()), userID)
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	if err := pkgerrors.FromValidation(input.Validate()); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	setOptional(changes, "phone", input.Phone)
	setOptional(changes, "avatar", input.Avatar)
	setOptional(changes, "resume", input.Resume)
	setOptional(changes, "website", input.Website)

	var out *ProfileDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		found, err := repo.UpdateProfile(ctx, userID, changes)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_user_profiles_phone") {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		out, err = s.load(ctx, repo, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *profileService) ChangeRole(ctx context.Context, actorID, targetID uuid.UUID, role enums.UserRole) (*ProfileDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admins cannot change their own role")
	}

	var out *ProfileDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		found, err := repo.UpdateRole(ctx, targetID, role)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		out, err = s.load(ctx, repo, targetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"target_user_id": targetID.String(),
			"role":           role,
		}), "user role changed")
	}
	return out, nil
}

func (s *profileService) load(ctx context.Context, repo *Repository, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	profile, err := repo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return ProfileFromModels(user, profile), nil
}

func setOptional(changes map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		changes[column] = nil
		return
	}
	changes[column] = trimmed
}
