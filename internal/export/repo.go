package export

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRow is one line of the products sheet.
type ProductRow struct {
	ID           uuid.UUID       `gorm:"column:id"`
	Name         string          `gorm:"column:name"`
	Slug         string          `gorm:"column:slug"`
	CategoryName string          `gorm:"column:category_name"`
	BrandName    string          `gorm:"column:brand_name"`
	DefaultPrice decimal.Decimal `gorm:"column:default_price"`
	AvgRating    decimal.Decimal `gorm:"column:avg_rating"`
	VariantCount int64           `gorm:"column:variant_count"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

// OrderRow is one line of the orders sheet.
type OrderRow struct {
	ID          uuid.UUID       `gorm:"column:id"`
	UserEmail   string          `gorm:"column:user_email"`
	FullPrice   decimal.Decimal `gorm:"column:full_price"`
	LineCount   int64           `gorm:"column:line_count"`
	UnitCount   int64           `gorm:"column:unit_count"`
	Invoice     *string         `gorm:"column:invoice"`
	TrackingURL *string         `gorm:"column:tracking_url"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Products(ctx context.Context, limit int) ([]ProductRow, error) {
	var rows []ProductRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select(`products.id, products.name, products.slug,
			categories.name AS category_name,
			brands.name AS brand_name,
			products.default_price, products.avg_rating,
			(SELECT COUNT(*) FROM product_variants WHERE product_variants.product_id = products.id) AS variant_count,
			products.created_at`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Order("products.created_at DESC").
		Order("products.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) Orders(ctx context.Context, limit int) ([]OrderRow, error) {
	var rows []OrderRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select(`orders.id,
			users.email AS user_email,
			orders.full_price,
			(SELECT COUNT(*) FROM basket_orders WHERE basket_orders.order_id = orders.id) AS line_count,
			(SELECT COALESCE(SUM(basket_orders.count), 0) FROM basket_orders WHERE basket_orders.order_id = orders.id) AS unit_count,
			orders.invoice, orders.tracking_url, orders.created_at`).
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC").
		Order("orders.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
