package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserProfile holds the storefront role and public details of a user.
type UserProfile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_user_profiles_user" json:"user_id"`
	Phone     *string        `gorm:"column:phone;uniqueIndex:ux_user_profiles_phone" json:"phone"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:consumer" json:"role"`
	Avatar    *string        `gorm:"column:avatar" json:"avatar"`
	Resume    *string        `gorm:"column:resume" json:"resume"`
	Website   *string        `gorm:"column:website" json:"website"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Role == "" {
		p.Role = enums.UserRoleConsumer
	}
	return nil
}

// Address is a delivery address owned by a user.
type Address struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:ix_addresses_user" json:"user_id"`
	Country     string    `gorm:"column:country;not null" json:"country"`
	City        string    `gorm:"column:city;not null" json:"city"`
	Street      string    `gorm:"column:street;not null" json:"street"`
	PostalIndex string    `gorm:"column:postal_index;not null" json:"postal_index"`
	MapLink     *string   `gorm:"column:map_link" json:"map_link"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
