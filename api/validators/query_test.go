package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
)

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=3", nil)
	page, err := ParsePage(req, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, 24, page.Offset())

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	page, err = ParsePage(req, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)

	req = httptest.NewRequest(http.MethodGet, "/products?page=abc", nil)
	_, err = ParsePage(req, 12)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodGet, "/products?page=0", nil)
	_, err = ParsePage(req, 12)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "orderID")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseOptionalUUIDQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	got, err := ParseOptionalUUIDQuery(req, "brand")
	require.NoError(t, err)
	assert.Nil(t, got)

	id := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/products?brand="+id.String(), nil)
	got, err = ParseOptionalUUIDQuery(req, "brand")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "desk", SanitizeString("  desk  ", 0))
	assert.Equal(t, "de", SanitizeString("desk", 2))
}
