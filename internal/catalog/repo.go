package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/internal/repo"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

// Repository persists categories, brands and colors.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB(ctx).Create(c).Error
}

func (r *Repository) ListCategories(ctx context.Context, page pagination.Page) (pagination.Result[models.Category], error) {
	return repo.Paginate[models.Category](r.DB(ctx).Model(&models.Category{}), page, "name ASC", "id ASC")
}

func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.DB(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateBrand(ctx context.Context, b *models.Brand) error {
	return r.DB(ctx).Create(b).Error
}

func (r *Repository) ListBrands(ctx context.Context, page pagination.Page) (pagination.Result[models.Brand], error) {
	return repo.Paginate[models.Brand](r.DB(ctx).Model(&models.Brand{}), page, "name ASC", "id ASC")
}

// LatestBrands returns the most recently added brands for the index page.
func (r *Repository) LatestBrands(ctx context.Context, limit int) ([]models.Brand, error) {
	var rows []models.Brand
	err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *Repository) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var b models.Brand
	if err := r.DB(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) CreateColor(ctx context.Context, c *models.Color) error {
	return r.DB(ctx).Create(c).Error
}

func (r *Repository) ListColors(ctx context.Context) ([]models.Color, error) {
	var rows []models.Color
	err := r.DB(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	var c models.Color
	if err := r.DB(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
