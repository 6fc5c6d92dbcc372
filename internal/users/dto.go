package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProfileDTO joins the account with its storefront profile.
type ProfileDTO struct {
	UserID  uuid.UUID      `json:"user_id"`
	Email   string         `json:"email"`
	Phone   *string        `json:"phone,omitempty"`
	Role    enums.UserRole `json:"role"`
	Avatar  *string        `json:"avatar,omitempty"`
	Resume  *string        `json:"resume,omitempty"`
	Website *string        `json:"website,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Phone        *string
	Role         enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ProfileFromModels(u *models.User, p *models.UserProfile) *ProfileDTO {
	if u == nil || p == nil {
		return nil
	}
	return &ProfileDTO{
		UserID:  u.ID,
		Email:   u.Email,
		Phone:   p.Phone,
		Role:    p.Role,
		Avatar:  p.Avatar,
		Resume:  p.Resume,
		Website: p.Website,
	}
}

func (c CreateUserDTO) ToModels() (*models.User, *models.UserProfile) {
	role := c.Role
	if role == "" {
		role = enums.UserRoleConsumer
	}
	return &models.User{
			Email:        c.Email,
			PasswordHash: c.PasswordHash,
		}, &models.UserProfile{
			Phone: c.Phone,
			Role:  role,
		}
}
