package enums

import "strings"

// ProductSort orders product listings.
type ProductSort string

const (
	ProductSortPriceAsc    ProductSort = "price_asc"
	ProductSortPriceDesc   ProductSort = "price_desc"
	ProductSortCreatedAsc  ProductSort = "created_asc"
	ProductSortCreatedDesc ProductSort = "created_desc"
	ProductSortRatingAsc   ProductSort = "rating_asc"
	ProductSortRatingDesc  ProductSort = "rating_desc"
)

// DefaultProductSort is used whenever the requested key is empty or unknown.
const DefaultProductSort = ProductSortPriceAsc

var validProductSorts = []ProductSort{
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortCreatedAsc,
	ProductSortCreatedDesc,
	ProductSortRatingAsc,
	ProductSortRatingDesc,
}

func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known sort key.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort never fails: unknown keys resolve to DefaultProductSort.
func ParseProductSort(value string) ProductSort {
	candidate := ProductSort(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate
	}
	return DefaultProductSort
}
