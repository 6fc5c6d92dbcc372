// Package export renders admin spreadsheets of the catalog and order book.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
)

const (
	productsSheet   = "Products"
	ordersSheet     = "Orders"
	defaultMaxRows  = 5000
	timestampLayout = "2006-01-02 15:04:05"
)

var (
	productHeaders = []string{"ID", "Name", "Slug", "Category", "Brand", "Default price", "Avg rating", "Variants", "Created at"}
	orderHeaders   = []string{"ID", "Customer", "Full price", "Lines", "Units", "Invoice", "Tracking URL", "Created at"}
)

type Service interface {
	ProductsWorkbook(ctx context.Context) (*excelize.File, error)
	OrdersWorkbook(ctx context.Context) (*excelize.File, error)
}

type service struct {
	repo    *Repository
	maxRows int
	logg    *logger.Logger
}

func NewService(repo *Repository, maxRows int, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	if maxRows < 1 {
		maxRows = defaultMaxRows
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, maxRows: maxRows, logg: logg}, nil
}

func (s *service) ProductsWorkbook(ctx context.Context) (*excelize.File, error) {
	rows, err := s.repo.Products(ctx, s.maxRows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products for export")
	}

	return s.build(ctx, productsSheet, productHeaders, len(rows), func(i int) []any {
		p := rows[i]
		return []any{
			p.ID.String(),
			p.Name,
			p.Slug,
			p.CategoryName,
			p.BrandName,
			p.DefaultPrice.InexactFloat64(),
			p.AvgRating.InexactFloat64(),
			p.VariantCount,
			p.CreatedAt.Format(timestampLayout),
		}
	})
}

func (s *service) OrdersWorkbook(ctx context.Context) (*excelize.File, error) {
	rows, err := s.repo.Orders(ctx, s.maxRows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders for export")
	}

	return s.build(ctx, ordersSheet, orderHeaders, len(rows), func(i int) []any {
		o := rows[i]
		return []any{
			o.ID.String(),
			o.UserEmail,
			o.FullPrice.InexactFloat64(),
			o.LineCount,
			o.UnitCount,
			stringOrEmpty(o.Invoice),
			stringOrEmpty(o.TrackingURL),
			o.CreatedAt.Format(timestampLayout),
		}
	})
}

// build writes a bold header row followed by n data rows.
func (s *service) build(ctx context.Context, sheet string, headers []string, n int, row func(i int) []any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "name sheet")
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header")
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			_ = f.Close()
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write row")
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"sheet": sheet,
		"rows":  n,
	}), "export workbook built")
	return f, nil
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
