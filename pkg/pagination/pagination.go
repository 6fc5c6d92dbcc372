package pagination

const (
	// ProductPageSize is the fixed page size for product listings.
	ProductPageSize = 12
	// CatalogPageSize is the fixed page size for brand and category listings.
	CatalogPageSize = 20
	// DefaultPageSize applies to reviews, orders and other secondary lists.
	DefaultPageSize = 20
)

// Page is a 1-based page request with a fixed size.
type Page struct {
	Number int
	Size   int
}

// New normalizes a requested page number against size. Page numbers below 1
// resolve to the first page.
func New(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the number of rows to read.
func (p Page) Limit() int {
	return p.Size
}

// Result wraps one page of items with the totals clients need to render pagers.
type Result[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasNext  bool  `json:"has_next"`
}

// NewResult assembles a Result, normalising nil items to an empty list.
func NewResult[T any](items []T, total int64, page Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:    items,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
		HasNext:  int64(page.Offset()+len(items)) < total,
	}
}
