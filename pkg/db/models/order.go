package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Basket is one cart line. A user holds at most one row per variant.
type Basket struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_baskets_user_variant" json:"user_id"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductVariantID uuid.UUID `gorm:"column:product_variant_id;type:uuid;not null;uniqueIndex:ux_baskets_user_variant" json:"product_variant_id"`
	Count            int       `gorm:"column:count;not null" json:"count"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *Basket) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Order is immutable after placement apart from the fulfillment fields.
type Order struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:ix_orders_user" json:"user_id"`
	AddressID   *uuid.UUID      `gorm:"column:address_id;type:uuid" json:"address_id"`
	FullPrice   decimal.Decimal `gorm:"column:full_price;type:numeric(12,2);not null" json:"full_price"`
	Invoice     *string         `gorm:"column:invoice" json:"invoice"`
	TrackingURL *string         `gorm:"column:tracking_url" json:"tracking_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// BasketOrder snapshots an ordered basket line. BasketID goes NULL once the
// basket row is cleared and ProductVariantID once the variant is deleted; the
// names, count and unit price stay.
type BasketOrder struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BasketID         *uuid.UUID      `gorm:"column:basket_id;type:uuid" json:"basket_id"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:ix_basket_orders_order" json:"order_id"`
	ProductVariantID *uuid.UUID      `gorm:"column:product_variant_id;type:uuid" json:"product_variant_id"`
	ProductName      string          `gorm:"column:product_name;not null;default:''" json:"product_name"`
	VariantName      string          `gorm:"column:variant_name;not null;default:''" json:"variant_name"`
	Count            int             `gorm:"column:count;not null" json:"count"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (bo *BasketOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&bo.ID)
	return nil
}

type ProductOrder struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductVariantID uuid.UUID `gorm:"column:product_variant_id;type:uuid;not null" json:"product_variant_id"`
	OrderID          uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:ix_product_orders_order" json:"order_id"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (po *ProductOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&po.ID)
	return nil
}
