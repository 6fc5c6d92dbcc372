package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kai120789/marketplace/api/responses"
	"github.com/Kai120789/marketplace/api/validators"
	product "github.com/Kai120789/marketplace/internal/products"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

const maxSearchLength = 200

func parseSort(r *http.Request) enums.ProductSort {
	return enums.ParseProductSort(r.URL.Query().Get("sort"))
}

func parseDecimalQuery(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a non-negative number").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// parseProductFilters maps the browse query string onto list filters.
func parseProductFilters(r *http.Request) (product.ProductListFilters, error) {
	var filters product.ProductListFilters
	var err error

	if filters.CategoryID, err = validators.ParseOptionalUUIDQuery(r, "category"); err != nil {
		return filters, err
	}
	if filters.BrandID, err = validators.ParseOptionalUUIDQuery(r, "brand"); err != nil {
		return filters, err
	}
	if filters.MinPrice, err = parseDecimalQuery(r, "min_price"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = parseDecimalQuery(r, "max_price"); err != nil {
		return filters, err
	}
	query := r.URL.Query()
	filters.CategorySlug = validators.SanitizeString(query.Get("category_slug"), maxSearchLength)
	filters.Query = validators.SanitizeString(query.Get("q"), maxSearchLength)
	return filters, nil
}

func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r, pagination.ProductPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Filters: filters,
			Sort:    parseSort(r),
			Page:    page.Number,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves the product page. ?variant= selects a specific variant.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		variant := validators.SanitizeString(r.URL.Query().Get("variant"), maxSearchLength)
		detail, err := svc.GetProductDetail(r.Context(), chi.URLParam(r, "slug"), variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func ProductIndex(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		page, err := svc.Index(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		var body product.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateProduct(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func VariantCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body product.CreateVariantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variant, err := svc.CreateVariant(r.Context(), productID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

func VariantDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteVariant(r.Context(), productID, variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ProductColorAttach and ProductColorDetach manage the product_colors link.
func ProductColorAttach(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return productColorHandler(logg, func(r *http.Request, productID, colorID uuid.UUID) error {
		return svc.AttachColor(r.Context(), productID, colorID)
	}, svc == nil)
}

func ProductColorDetach(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return productColorHandler(logg, func(r *http.Request, productID, colorID uuid.UUID) error {
		return svc.DetachColor(r.Context(), productID, colorID)
	}, svc == nil)
}

func productColorHandler(logg *logger.Logger, apply func(r *http.Request, productID, colorID uuid.UUID) error, missing bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, unavailable("product"))
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		colorID, err := validators.ParseUUIDParam(r, "colorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(r, productID, colorID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
