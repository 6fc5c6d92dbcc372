package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	Upsert(ctx context.Context, line *models.Basket) error
	FindByUserVariant(ctx context.Context, userID, variantID uuid.UUID) (*models.Basket, error)
	FindOwned(ctx context.Context, userID, basketID uuid.UUID) (*models.Basket, error)
	UpdateCountOwned(ctx context.Context, userID, basketID uuid.UUID, count int) (int64, error)
	DeleteOwned(ctx context.Context, userID, basketID uuid.UUID) (int64, error)
	ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error)
}
