package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Dialect reports the backend of the bound connection.
func (b Base) Dialect() db.Dialect {
	return db.DialectOf(b.db)
}

// ContainsOp is the case-insensitive substring operator for the bound backend.
// sqlite LIKE is already case-insensitive for ASCII.
func (b Base) ContainsOp() string {
	if b.Dialect() == db.DialectSQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// ContainsPattern escapes LIKE wildcards in term and wraps it in %.
func ContainsPattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(term)) + "%"
}

// Paginate counts the rows matched by query and loads one page of them. The
// count runs on a cloned session so ordering never reaches it.
func Paginate[T any](query *gorm.DB, page pagination.Page, order ...string) (pagination.Result[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return pagination.Result[T]{}, err
	}

	items := make([]T, 0, page.Limit())
	if total > 0 && int64(page.Offset()) < total {
		q := query.Session(&gorm.Session{})
		for _, o := range order {
			q = q.Order(o)
		}
		if err := q.Offset(page.Offset()).Limit(page.Limit()).Find(&items).Error; err != nil {
			return pagination.Result[T]{}, err
		}
	}
	return pagination.NewResult(items, total, page), nil
}
