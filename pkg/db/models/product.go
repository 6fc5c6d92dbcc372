package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/Kai120789/marketplace/pkg/db/types"
)

// Product is the catalog listing. VariantSeq is the last sequence number handed
// out to a variant and only ever grows.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Slug             string          `gorm:"column:slug;not null;uniqueIndex:ux_products_slug" json:"slug"`
	CategoryID       uuid.UUID       `gorm:"column:category_id;type:uuid;not null;index:ix_products_category" json:"category_id"`
	BrandID          uuid.UUID       `gorm:"column:brand_id;type:uuid;not null;index:ix_products_brand" json:"brand_id"`
	Description      string          `gorm:"column:description;not null;default:''" json:"description"`
	DefaultPrice     decimal.Decimal `gorm:"column:default_price;type:numeric(10,2);not null" json:"default_price"`
	AvgRating        decimal.Decimal `gorm:"column:avg_rating;type:numeric(3,2);not null;default:0" json:"avg_rating"`
	Manual           *string         `gorm:"column:manual" json:"manual"`
	VideoURL         *string         `gorm:"column:video_url" json:"video_url"`
	VariantSeq       int             `gorm:"column:variant_seq;not null;default:0" json:"variant_seq"`
	DefaultVariantID *uuid.UUID      `gorm:"column:default_variant_id;type:uuid" json:"default_variant_id"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type ProductColor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_product_colors_product_color" json:"product_id"`
	ColorID   uuid.UUID `gorm:"column:color_id;type:uuid;not null;uniqueIndex:ux_product_colors_product_color" json:"color_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (pc *ProductColor) BeforeCreate(*gorm.DB) error {
	ensureID(&pc.ID)
	return nil
}

// ProductVariant is a purchasable color/configuration of a product. Category and
// brand are copied from the product at creation time.
type ProductVariant struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name             string             `gorm:"column:name;not null" json:"name"`
	Slug             string             `gorm:"column:slug;not null;uniqueIndex:ux_product_variants_slug" json:"slug"`
	ProductID        uuid.UUID          `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_product_variants_product_color;uniqueIndex:ux_product_variants_product_seq" json:"product_id"`
	ColorID          *uuid.UUID         `gorm:"column:color_id;type:uuid;uniqueIndex:ux_product_variants_product_color" json:"color_id"`
	CategoryID       uuid.UUID          `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	BrandID          uuid.UUID          `gorm:"column:brand_id;type:uuid;not null" json:"brand_id"`
	Description      string             `gorm:"column:description;not null;default:''" json:"description"`
	Images           dbtypes.StringList `gorm:"column:images;not null" json:"images"`
	Price            decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	TechnicalDrawing *string            `gorm:"column:technical_drawing" json:"technical_drawing"`
	ProductURL       *string            `gorm:"column:product_url" json:"product_url"`
	Seq              int                `gorm:"column:seq;not null;uniqueIndex:ux_product_variants_product_seq" json:"seq"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	if v.Images == nil {
		v.Images = dbtypes.StringList{}
	}
	return nil
}

type Review struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index:ix_reviews_product" json:"product_id"`
	UserID         *uuid.UUID `gorm:"column:user_id;type:uuid" json:"user_id"`
	Rating         int16      `gorm:"column:rating;type:smallint;not null" json:"rating"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Description    string     `gorm:"column:description;not null;default:''" json:"description"`
	Photo          *string    `gorm:"column:photo" json:"photo"`
	VideoReviewURL *string    `gorm:"column:video_review_url" json:"video_review_url"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
