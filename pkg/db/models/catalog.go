package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Slug          string    `gorm:"column:slug;not null;uniqueIndex:ux_categories_slug" json:"slug"`
	Photo         *string   `gorm:"column:photo" json:"photo"`
	Documentation *string   `gorm:"column:documentation" json:"documentation"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Brand struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Photo           *string   `gorm:"column:photo" json:"photo"`
	Description     *string   `gorm:"column:description" json:"description"`
	OfficialWebsite *string   `gorm:"column:official_website" json:"official_website"`
	CatalogPDF      *string   `gorm:"column:catalog_pdf" json:"catalog_pdf"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Color is a reusable swatch; Value holds a hex code or a CSS color name.
type Color struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Value       string    `gorm:"column:color;not null" json:"color"`
	Image       *string   `gorm:"column:image" json:"image"`
	PaletteFile *string   `gorm:"column:palette_file" json:"palette_file"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Color) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
