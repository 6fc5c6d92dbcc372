package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kai120789/marketplace/pkg/db/models"
)

// Repository exposes persistence operations for basket rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindVariant(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.db.WithContext(ctx).First(&v, "id = ?", variantID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// Upsert inserts the line or adds its count to the existing (user, variant)
// row in a single statement.
func (r *Repository) Upsert(ctx context.Context, line *models.Basket) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_variant_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"count":      gorm.Expr("baskets.count + excluded.count"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(line).Error
}

func (r *Repository) FindByUserVariant(ctx context.Context, userID, variantID uuid.UUID) (*models.Basket, error) {
	var line models.Basket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_variant_id = ?", userID, variantID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) FindOwned(ctx context.Context, userID, basketID uuid.UUID) (*models.Basket, error) {
	var line models.Basket
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", basketID, userID).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) UpdateCountOwned(ctx context.Context, userID, basketID uuid.UUID, count int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Basket{}).
		Where("id = ? AND user_id = ?", basketID, userID).
		Updates(map[string]any{"count": count, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *Repository) DeleteOwned(ctx context.Context, userID, basketID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", basketID, userID).Delete(&models.Basket{})
	return res.RowsAffected, res.Error
}

// ListLines joins every basket row of the user to its variant and product,
// oldest first.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	var lines []Line
	err := r.db.WithContext(ctx).
		Table("baskets").
		Select(`baskets.id AS basket_id,
			baskets.product_id,
			baskets.product_variant_id,
			products.name AS product_name,
			product_variants.name AS variant_name,
			product_variants.slug AS variant_slug,
			product_variants.price AS unit_price,
			baskets.count`).
		Joins("JOIN product_variants ON product_variants.id = baskets.product_variant_id").
		Joins("JOIN products ON products.id = baskets.product_id").
		Where("baskets.user_id = ?", userID).
		Order("baskets.created_at ASC").
		Order("baskets.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
