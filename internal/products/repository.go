package product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kai120789/marketplace/internal/repo"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

// Repository wires together all product-related persistence helpers.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product by ID and reports whether it existed.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected > 0, res.Error
}

// ListProducts applies the browse filters, sort and page. A query string
// matches product name, description or brand name case-insensitively.
func (r *Repository) ListProducts(ctx context.Context, in ListProductsInput, page pagination.Page) (pagination.Result[models.Product], error) {
	q := r.DB(ctx).Model(&models.Product{})
	f := in.Filters

	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		q = q.Where("products.category_id IN (?)",
			r.DB(ctx).Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.BrandID != nil {
		q = q.Where("products.brand_id = ?", *f.BrandID)
	}
	if f.MinPrice != nil {
		q = q.Where("products.default_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.default_price <= ?", *f.MaxPrice)
	}
	if f.Query != "" {
		op := r.ContainsOp()
		pattern := repo.ContainsPattern(f.Query)
		matches := r.DB(ctx).
			Table("products AS p").
			Select("DISTINCT p.id").
			Joins("LEFT JOIN brands b ON b.id = p.brand_id").
			Where(fmt.Sprintf(`p.name %[1]s ? ESCAPE '\' OR p.description %[1]s ? ESCAPE '\' OR b.name %[1]s ? ESCAPE '\'`, op),
				pattern, pattern, pattern)
		q = q.Where("products.id IN (?)", matches)
	}

	return repo.Paginate[models.Product](q, page, orderClauses(in.Sort)...)
}

// LatestProducts returns the newest products for the index page.
func (r *Repository) LatestProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

type allocatedSeq struct {
	VariantSeq int
	Slug       string
}

// AllocateVariantSeq bumps products.variant_seq and returns the new value with
// the product slug. The UPDATE holds the product row lock until the
// transaction ends, so allocations for one product are serialized. It returns
// gorm.ErrRecordNotFound when the product does not exist.
func (r *Repository) AllocateVariantSeq(ctx context.Context, productID uuid.UUID) (int, string, error) {
	var rows []allocatedSeq
	err := r.DB(ctx).Raw(
		`UPDATE products SET variant_seq = variant_seq + 1, updated_at = ? WHERE id = ? RETURNING variant_seq, slug`,
		time.Now().UTC(), productID,
	).Scan(&rows).Error
	if err != nil {
		return 0, "", err
	}
	if len(rows) == 0 {
		return 0, "", gorm.ErrRecordNotFound
	}
	return rows[0].VariantSeq, rows[0].Slug, nil
}

func (r *Repository) CreateVariant(ctx context.Context, v *models.ProductVariant) error {
	return r.DB(ctx).Create(v).Error
}

func (r *Repository) FindVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.DB(ctx).Where("id = ? AND product_id = ?", variantID, productID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// FindVariantByID loads a variant regardless of product.
func (r *Repository) FindVariantByID(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.DB(ctx).First(&v, "id = ?", variantID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repository) VariantColorTaken(ctx context.Context, productID, colorID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND color_id = ?", productID, colorID).
		Count(&count).Error
	return count > 0, err
}

// ListVariants returns the product's variants by ascending seq.
func (r *Repository) ListVariants(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	var rows []models.ProductVariant
	err := r.DB(ctx).Where("product_id = ?", productID).Order("seq ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", variantID).Delete(&models.ProductVariant{}).Error
}

// SetDefaultVariantIfEmpty points the product at variantID unless it already
// has a default.
func (r *Repository) SetDefaultVariantIfEmpty(ctx context.Context, productID, variantID uuid.UUID) error {
	return r.DB(ctx).Model(&models.Product{}).
		Where("id = ? AND default_variant_id IS NULL", productID).
		UpdateColumn("default_variant_id", variantID).Error
}

// SetDefaultVariant overwrites the default; nil clears it.
func (r *Repository) SetDefaultVariant(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) error {
	return r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("default_variant_id", variantID).Error
}

// AttachColor links a color to a product; re-attaching is a no-op.
func (r *Repository) AttachColor(ctx context.Context, productID, colorID uuid.UUID) error {
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "color_id"}},
			DoNothing: true,
		}).
		Create(&models.ProductColor{ProductID: productID, ColorID: colorID}).Error
}

func (r *Repository) DetachColor(ctx context.Context, productID, colorID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("product_id = ? AND color_id = ?", productID, colorID).
		Delete(&models.ProductColor{})
	return res.RowsAffected > 0, res.Error
}

// ListColors returns the colors attached to the product by name.
func (r *Repository) ListColors(ctx context.Context, productID uuid.UUID) ([]models.Color, error) {
	var rows []models.Color
	err := r.DB(ctx).
		Joins("JOIN product_colors pc ON pc.color_id = colors.id").
		Where("pc.product_id = ?", productID).
		Order("colors.name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.DB(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) FindBrand(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var b models.Brand
	if err := r.DB(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) FindColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	var c models.Color
	if err := r.DB(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
