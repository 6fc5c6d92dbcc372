package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/internal/repo"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) ProductIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var p models.Product
	if err := r.DB(ctx).Select("id").Where("slug = ?", slug).First(&p).Error; err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// TouchProduct takes the product row lock for the rest of the transaction
// and reports whether the product exists.
func (r *Repository) TouchProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("updated_at", time.Now().UTC())
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.DB(ctx).Create(review).Error
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Review{}).Error
}

// ListByProduct returns reviews newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, page pagination.Page) (pagination.Result[models.Review], error) {
	q := r.DB(ctx).Model(&models.Review{}).Where("product_id = ?", productID)
	return repo.Paginate[models.Review](q, page, "created_at DESC", "id DESC")
}

// RecomputeAverage stores AVG(rating) rounded to two places on the product
// and returns it. A product without reviews goes back to zero.
func (r *Repository) RecomputeAverage(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var avg decimal.NullDecimal
	row := r.DB(ctx).Model(&models.Review{}).
		Select("AVG(rating)").
		Where("product_id = ?", productID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return decimal.Zero, err
	}
	value := decimal.Zero
	if avg.Valid {
		value = avg.Decimal.Round(2)
	}
	if err := r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("avg_rating", value).Error; err != nil {
		return decimal.Zero, err
	}
	return value, nil
}
