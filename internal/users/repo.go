package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the user and its profile. Callers wrap it in a transaction.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, *models.UserProfile, error) {
	user, profile := dto.ToModels()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, nil, err
	}
	profile.UserID = user.ID
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateProfile applies the given column changes and reports whether a row matched.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, changes map[string]any) (bool, error) {
	if len(changes) == 0 {
		return true, nil
	}
	changes["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		UpdateColumns(changes)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) UpdateRole(ctx context.Context, userID uuid.UUID, role enums.UserRole) (bool, error) {
	return r.UpdateProfile(ctx, userID, map[string]any{"role": role})
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}
