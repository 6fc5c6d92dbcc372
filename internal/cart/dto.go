package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one basket row priced at the variant's current price.
type Line struct {
	BasketID         uuid.UUID       `json:"basket_id" gorm:"column:basket_id"`
	ProductID        uuid.UUID       `json:"product_id" gorm:"column:product_id"`
	ProductVariantID uuid.UUID       `json:"product_variant_id" gorm:"column:product_variant_id"`
	ProductName      string          `json:"product_name" gorm:"column:product_name"`
	VariantName      string          `json:"variant_name" gorm:"column:variant_name"`
	VariantSlug      string          `json:"variant_slug" gorm:"column:variant_slug"`
	UnitPrice        decimal.Decimal `json:"unit_price" gorm:"column:unit_price"`
	Count            int             `json:"count" gorm:"column:count"`
	LineTotal        decimal.Decimal `json:"line_total" gorm:"-"`
}

// View is the cart as shown to its owner.
type View struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// AddItemRequest is the body of POST /cart/items. Quantity defaults to 1.
type AddItemRequest struct {
	ProductVariantID uuid.UUID `json:"product_variant_id" validate:"required"`
	Quantity         *int      `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type UpdateItemRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

func priceLines(lines []Line) View {
	total := decimal.Zero
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Count)))
		total = total.Add(lines[i].LineTotal)
	}
	if lines == nil {
		lines = []Line{}
	}
	return View{Lines: lines, Total: total.Round(2)}
}
