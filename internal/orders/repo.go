package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kai120789/marketplace/internal/repo"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

// ErrBasketChanged reports a basket row that was edited or removed between
// the checkout read and its cleanup.
var ErrBasketChanged = errors.New("basket changed during checkout")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// SelectBasketLines loads the user's basket rows joined to the current variant
// price. A nil or empty basketIDs selects every row. On Postgres the basket
// rows stay locked until the transaction ends, so concurrent adds and
// checkouts of the same rows wait for it.
func (r *repository) SelectBasketLines(ctx context.Context, userID uuid.UUID, basketIDs []uuid.UUID) ([]BasketLine, error) {
	q := r.db.WithContext(ctx).
		Table("baskets").
		Select(`baskets.id AS basket_id,
			product_variants.product_id,
			baskets.product_variant_id,
			products.name AS product_name,
			product_variants.name AS variant_name,
			baskets.count,
			product_variants.price AS unit_price`).
		Joins("JOIN product_variants ON product_variants.id = baskets.product_variant_id").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("baskets.user_id = ?", userID)
	if len(basketIDs) > 0 {
		q = q.Where("baskets.id IN ?", basketIDs)
	}
	if db.DialectOf(r.db) == db.DialectPostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "baskets"}})
	}

	var lines []BasketLine
	if err := q.Order("baskets.created_at ASC").Order("baskets.id ASC").Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) AddressOwned(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateBasketOrders(ctx context.Context, rows []models.BasketOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) CreateProductOrders(ctx context.Context, rows []models.ProductOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ClearBaskets unlinks the ordered snapshots from the basket rows and deletes
// the rows. A row whose count no longer matches the ordered line is left alone
// and ErrBasketChanged is returned.
func (r *repository) ClearBaskets(ctx context.Context, userID uuid.UUID, lines []BasketLine) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.BasketID)
	}

	conn := r.db.WithContext(ctx)
	if err := conn.Model(&models.BasketOrder{}).
		Where("basket_id IN ?", ids).
		Updates(map[string]any{"basket_id": nil, "updated_at": time.Now().UTC()}).Error; err != nil {
		return err
	}
	for _, line := range lines {
		res := conn.Where("id = ? AND user_id = ? AND count = ?", line.BasketID, userID, line.Count).
			Delete(&models.Basket{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrBasketChanged
		}
	}
	return nil
}

func (r *repository) ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Page) (pagination.Result[models.Order], error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	return repo.Paginate[models.Order](q, page, "created_at DESC", "id DESC")
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	var lines []OrderLine
	err := r.db.WithContext(ctx).
		Table("basket_orders").
		Select(`basket_orders.id,
			basket_orders.basket_id,
			product_variants.product_id,
			basket_orders.product_variant_id,
			basket_orders.product_name,
			basket_orders.variant_name,
			COALESCE(product_variants.slug, '') AS variant_slug,
			basket_orders.count,
			basket_orders.unit_price`).
		Joins("LEFT JOIN product_variants ON product_variants.id = basket_orders.product_variant_id").
		Where("basket_orders.order_id = ?", orderID).
		Order("basket_orders.created_at ASC").
		Order("basket_orders.id ASC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) UpdateFulfillment(ctx context.Context, orderID uuid.UUID, updates map[string]any) (int64, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
	return res.RowsAffected, res.Error
}
