package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one snapshotted line of a placed order.
type OrderLine struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id"`
	Count            int             `json:"count"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// OrderPlacedEvent is emitted in the checkout transaction.
type OrderPlacedEvent struct {
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	AddressID *uuid.UUID      `json:"address_id,omitempty"`
	FullPrice decimal.Decimal `json:"full_price"`
	Lines     []OrderLine     `json:"lines"`
}

// OrderFulfillmentUpdatedEvent reports a new invoice or tracking link.
type OrderFulfillmentUpdatedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Invoice     *string   `json:"invoice,omitempty"`
	TrackingURL *string   `json:"tracking_url,omitempty"`
}

// ReviewCreatedEvent carries the product's recomputed average.
type ReviewCreatedEvent struct {
	ReviewID  uuid.UUID       `json:"review_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Rating    int             `json:"rating"`
	AvgRating decimal.Decimal `json:"avg_rating"`
}

type VariantCreatedEvent struct {
	VariantID uuid.UUID `json:"variant_id"`
	ProductID uuid.UUID `json:"product_id"`
	Slug      string    `json:"slug"`
	Seq       int       `json:"seq"`
}
