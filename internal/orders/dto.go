package orders

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
)

// BasketLine is a basket row selected for checkout, priced at the current
// variant price.
type BasketLine struct {
	BasketID         uuid.UUID       `gorm:"column:basket_id"`
	ProductID        uuid.UUID       `gorm:"column:product_id"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id"`
	ProductName      string          `gorm:"column:product_name"`
	VariantName      string          `gorm:"column:variant_name"`
	Count            int             `gorm:"column:count"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price"`
}

// OrderLine is one snapshotted line of a placed order. The product and
// variant references are nil once the variant has been deleted.
type OrderLine struct {
	ID               uuid.UUID       `json:"id" gorm:"column:id"`
	BasketID         *uuid.UUID      `json:"basket_id,omitempty" gorm:"column:basket_id"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty" gorm:"column:product_id"`
	ProductVariantID *uuid.UUID      `json:"product_variant_id,omitempty" gorm:"column:product_variant_id"`
	ProductName      string          `json:"product_name" gorm:"column:product_name"`
	VariantName      string          `json:"variant_name" gorm:"column:variant_name"`
	VariantSlug      string          `json:"variant_slug" gorm:"column:variant_slug"`
	Count            int             `json:"count" gorm:"column:count"`
	UnitPrice        decimal.Decimal `json:"unit_price" gorm:"column:unit_price"`
	LineTotal        decimal.Decimal `json:"line_total" gorm:"-"`
}

type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	AddressID   *uuid.UUID      `json:"address_id,omitempty"`
	FullPrice   decimal.Decimal `json:"full_price"`
	Invoice     *string         `json:"invoice,omitempty"`
	TrackingURL *string         `json:"tracking_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderDetail is an order with its lines.
type OrderDetail struct {
	Order OrderDTO    `json:"order"`
	Lines []OrderLine `json:"lines"`
}

func OrderFromModel(o models.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID,
		UserID:      o.UserID,
		AddressID:   o.AddressID,
		FullPrice:   o.FullPrice,
		Invoice:     o.Invoice,
		TrackingURL: o.TrackingURL,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// PlaceOrderRequest is the body of POST /orders. An empty basket_ids list
// orders the whole cart.
type PlaceOrderRequest struct {
	AddressID *uuid.UUID  `json:"address_id,omitempty"`
	BasketIDs []uuid.UUID `json:"basket_ids,omitempty"`
}

type PlaceOrderInput struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	AddressID *uuid.UUID
	BasketIDs []uuid.UUID
}

// FulfillmentRequest sets the invoice reference and/or tracking link.
type FulfillmentRequest struct {
	Invoice     *string `json:"invoice,omitempty"`
	TrackingURL *string `json:"tracking_url,omitempty"`
}

func (r FulfillmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Invoice, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.TrackingURL, validation.NilOrNotEmpty, is.URL),
	)
}
