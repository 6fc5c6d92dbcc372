package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kai120789/marketplace/pkg/enums"
)

// ProductListFilters describe the supported filter knobs for the browse
// endpoint. Every set field narrows the result.
type ProductListFilters struct {
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	CategorySlug string           `json:"category_slug,omitempty"`
	BrandID      *uuid.UUID       `json:"brand_id,omitempty"`
	MinPrice     *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice     *decimal.Decimal `json:"max_price,omitempty"`
	Query        string           `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to filter and page products.
type ListProductsInput struct {
	Filters ProductListFilters
	Sort    enums.ProductSort
	Page    int
}

var sortColumns = map[enums.ProductSort]string{
	enums.ProductSortPriceAsc:    "products.default_price ASC",
	enums.ProductSortPriceDesc:   "products.default_price DESC",
	enums.ProductSortCreatedAsc:  "products.created_at ASC",
	enums.ProductSortCreatedDesc: "products.created_at DESC",
	enums.ProductSortRatingAsc:   "products.avg_rating ASC",
	enums.ProductSortRatingDesc:  "products.avg_rating DESC",
}

// orderClauses returns the ORDER BY terms for sort, always ending with the id
// tiebreaker so pages are stable.
func orderClauses(sort enums.ProductSort) []string {
	column, ok := sortColumns[sort]
	if !ok {
		column = sortColumns[enums.DefaultProductSort]
	}
	return []string{column, "products.id ASC"}
}
