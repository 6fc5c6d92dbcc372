package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/Kai120789/marketplace/internal/products"
	"github.com/Kai120789/marketplace/pkg/enums"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

type stubProductService struct {
	product.Service
	input  product.ListProductsInput
	called bool
}

func (s *stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (pagination.Result[product.ProductDTO], error) {
	s.called = true
	s.input = input
	return pagination.NewResult([]product.ProductDTO{}, 0, pagination.New(input.Page, pagination.ProductPageSize)), nil
}

func TestProductListParsesFilters(t *testing.T) {
	brandID := uuid.New()
	stub := &stubProductService{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?brand="+brandID.String()+"&min_price=10&max_price=99.50&q=%20oak%20&sort=rating_desc&page=2", nil)
	rec := httptest.NewRecorder()
	ProductList(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, stub.called)
	require.NotNil(t, stub.input.Filters.BrandID)
	assert.Equal(t, brandID, *stub.input.Filters.BrandID)
	assert.Equal(t, "10", stub.input.Filters.MinPrice.String())
	assert.Equal(t, "99.5", stub.input.Filters.MaxPrice.String())
	assert.Equal(t, "oak", stub.input.Filters.Query)
	assert.Equal(t, enums.ProductSortRatingDesc, stub.input.Sort)
	assert.Equal(t, 2, stub.input.Page)
	assert.Nil(t, stub.input.Filters.CategoryID)
}

func TestProductListUnknownSortFallsBack(t *testing.T) {
	stub := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=popularity", nil)
	rec := httptest.NewRecorder()
	ProductList(stub, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.ProductSortPriceAsc, stub.input.Sort)
}

func TestProductListRejectsBadQuery(t *testing.T) {
	cases := []string{
		"/api/v1/products?min_price=cheap",
		"/api/v1/products?max_price=-1",
		"/api/v1/products?brand=not-a-uuid",
		"/api/v1/products?page=0",
	}
	for _, target := range cases {
		stub := &stubProductService{}
		rec := httptest.NewRecorder()
		ProductList(stub, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.False(t, stub.called, target)
	}
}

func TestProductListWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductList(nil, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
