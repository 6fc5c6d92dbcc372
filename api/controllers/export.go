package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Kai120789/marketplace/api/responses"
	"github.com/Kai120789/marketplace/internal/export"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func AdminExportProducts(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return workbookHandler("products", logg, svc == nil, func(ctx context.Context) (*excelize.File, error) {
		return svc.ProductsWorkbook(ctx)
	})
}

func AdminExportOrders(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return workbookHandler("orders", logg, svc == nil, func(ctx context.Context) (*excelize.File, error) {
		return svc.OrdersWorkbook(ctx)
	})
}

func workbookHandler(name string, logg *logger.Logger, missing bool, build func(context.Context) (*excelize.File, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, unavailable("export"))
			return
		}

		f, err := build(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && logg != nil {
				logg.Error(r.Context(), "export.close_failed", closeErr)
			}
		}()

		buf, err := f.WriteToBuffer()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook"))
			return
		}

		filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
