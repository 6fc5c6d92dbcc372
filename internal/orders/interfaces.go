package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SelectBasketLines(ctx context.Context, userID uuid.UUID, basketIDs []uuid.UUID) ([]BasketLine, error)
	AddressOwned(ctx context.Context, userID, addressID uuid.UUID) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateBasketOrders(ctx context.Context, rows []models.BasketOrder) error
	CreateProductOrders(ctx context.Context, rows []models.ProductOrder) error
	ClearBaskets(ctx context.Context, userID uuid.UUID, lines []BasketLine) error
	ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[models.Order], error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
	UpdateFulfillment(ctx context.Context, orderID uuid.UUID, updates map[string]any) (int64, error)
}
