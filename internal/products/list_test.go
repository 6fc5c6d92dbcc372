package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Kai120789/marketplace/pkg/db/dbtest"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
)

type listingFixture struct {
	fixture
	c1, c2 models.Category
	acme   models.Brand
}

// newListingFixture seeds Cheap/Mid/High at 500/1500/2500 in C1 and Other at
// 1500 in C2. Cheap is made by Acme; High mentions walnut in its description.
func newListingFixture(t *testing.T) listingFixture {
	t.Helper()
	f := listingFixture{fixture: newFixture(t)}
	conn := f.client.DB()
	f.c1 = dbtest.Category(t, conn, "Desks", "desks")
	f.c2 = dbtest.Category(t, conn, "Chairs", "chairs")
	f.acme = dbtest.Brand(t, conn, "ACME Furniture")
	plain := dbtest.Brand(t, conn, "Woodline")

	dbtest.Product(t, conn, "Cheap", "500.00", f.c1.ID, f.acme.ID)
	dbtest.Product(t, conn, "Mid", "1500.00", f.c1.ID, plain.ID)
	high := dbtest.Product(t, conn, "High", "2500.00", f.c1.ID, plain.ID)
	dbtest.Product(t, conn, "Other", "1500.00", f.c2.ID, plain.ID)

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", high.ID).
		UpdateColumn("description", "Solid walnut top").Error)
	return f
}

func (f listingFixture) names(t *testing.T, in ListProductsInput) []string {
	t.Helper()
	res, err := f.svc.ListProducts(context.Background(), in)
	require.NoError(t, err)
	out := make([]string, 0, len(res.Items))
	for _, p := range res.Items {
		out = append(out, p.Name)
	}
	return out
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestListProductsCombinesFiltersInSortOrder(t *testing.T) {
	f := newListingFixture(t)

	got := f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &f.c1.ID, MinPrice: price("1000")},
		Sort:    enums.ProductSortPriceAsc,
	})
	require.Equal(t, []string{"Mid", "High"}, got)

	got = f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategorySlug: "desks", MinPrice: price("1000")},
		Sort:    enums.ProductSortPriceDesc,
	})
	require.Equal(t, []string{"High", "Mid"}, got)

	got = f.names(t, ListProductsInput{
		Filters: ProductListFilters{MinPrice: price("1500"), MaxPrice: price("1500")},
		Sort:    enums.ProductSortPriceAsc,
	})
	require.ElementsMatch(t, []string{"Mid", "Other"}, got)

	got = f.names(t, ListProductsInput{Filters: ProductListFilters{BrandID: &f.acme.ID}})
	require.Equal(t, []string{"Cheap"}, got)
}

func TestListProductsNoMatchIsEmpty(t *testing.T) {
	f := newListingFixture(t)

	res, err := f.svc.ListProducts(context.Background(), ListProductsInput{
		Filters: ProductListFilters{CategoryID: &f.c2.ID, MinPrice: price("9000")},
	})
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.NotNil(t, res.Items)
	require.Zero(t, res.Total)

	missing := uuid.New()
	require.Empty(t, f.names(t, ListProductsInput{Filters: ProductListFilters{CategoryID: &missing}}))
	require.Empty(t, f.names(t, ListProductsInput{Filters: ProductListFilters{CategorySlug: "lamps"}}))
}

func TestListProductsSearchesNameDescriptionAndBrand(t *testing.T) {
	f := newListingFixture(t)

	require.Equal(t, []string{"Cheap"}, f.names(t, ListProductsInput{Filters: ProductListFilters{Query: "acme"}}))
	require.Equal(t, []string{"High"}, f.names(t, ListProductsInput{Filters: ProductListFilters{Query: "WALNUT"}}))
	require.Equal(t, []string{"Mid"}, f.names(t, ListProductsInput{Filters: ProductListFilters{Query: " mid "}}))

	// Brand and name matches on the same product are returned once.
	conn := f.client.DB()
	dbtest.Product(t, conn, "Acme Classic", "700.00", f.c1.ID, f.acme.ID)
	got := f.names(t, ListProductsInput{
		Filters: ProductListFilters{Query: "acme"},
		Sort:    enums.ProductSortPriceAsc,
	})
	require.Equal(t, []string{"Cheap", "Acme Classic"}, got)
}

func TestListProductsEscapesWildcards(t *testing.T) {
	f := newListingFixture(t)
	conn := f.client.DB()
	dbtest.Product(t, conn, "100% Oak", "900.00", f.c2.ID, uuid.Nil)
	dbtest.Product(t, conn, "1000 Oak", "900.00", f.c2.ID, uuid.Nil)
	dbtest.Product(t, conn, "oak_desk", "900.00", f.c2.ID, uuid.Nil)
	dbtest.Product(t, conn, "oakXdesk", "900.00", f.c2.ID, uuid.Nil)

	require.Equal(t, []string{"100% Oak"}, f.names(t, ListProductsInput{Filters: ProductListFilters{Query: "100%"}}))
	require.Equal(t, []string{"oak_desk"}, f.names(t, ListProductsInput{Filters: ProductListFilters{Query: "oak_"}}))
}

func TestListProductsSortFallbackAndRating(t *testing.T) {
	f := newListingFixture(t)
	conn := f.client.DB()
	require.NoError(t, conn.Model(&models.Product{}).Where("name = ?", "Cheap").
		UpdateColumn("avg_rating", decimal.RequireFromString("4.50")).Error)
	require.NoError(t, conn.Model(&models.Product{}).Where("name = ?", "Mid").
		UpdateColumn("avg_rating", decimal.RequireFromString("3.00")).Error)

	byPrice := []string{"Cheap", "Mid", "High"}
	require.Equal(t, byPrice, f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &f.c1.ID},
		Sort:    enums.ProductSort("popularity"),
	}))
	require.Equal(t, byPrice, f.names(t, ListProductsInput{Filters: ProductListFilters{CategoryID: &f.c1.ID}}))

	require.Equal(t, []string{"Cheap", "Mid", "High"}, f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &f.c1.ID},
		Sort:    enums.ProductSortRatingDesc,
	}))
	require.Equal(t, []string{"High", "Mid", "Cheap"}, f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &f.c1.ID},
		Sort:    enums.ProductSortRatingAsc,
	}))
}

func TestListProductsPagesAndValidatesRange(t *testing.T) {
	f := newListingFixture(t)
	conn := f.client.DB()
	shelves := dbtest.Category(t, conn, "Shelves", "shelves")
	for i := 0; i < 13; i++ {
		dbtest.Product(t, conn, fmt.Sprintf("Shelf %02d", i), fmt.Sprintf("%d.00", 100+i), shelves.ID, uuid.Nil)
	}

	in := ListProductsInput{Filters: ProductListFilters{CategoryID: &shelves.ID}, Page: 2}
	res, err := f.svc.ListProducts(context.Background(), in)
	require.NoError(t, err)
	require.EqualValues(t, 13, res.Total)
	require.Equal(t, 2, res.Page)
	require.Equal(t, 12, res.PageSize)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Shelf 12", res.Items[0].Name)
	require.False(t, res.HasNext)

	_, err = f.svc.ListProducts(context.Background(), ListProductsInput{
		Filters: ProductListFilters{MinPrice: price("2000"), MaxPrice: price("1000")},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListProductsSearchOnPostgres(t *testing.T) {
	f := listingFixture{fixture: newFixtureWith(t, dbtest.Postgres(t))}
	conn := f.client.DB()
	category := dbtest.Category(t, conn, "Desks", "desks-"+uuid.NewString()[:8])
	brand := dbtest.Brand(t, conn, "Nordwood "+uuid.NewString()[:8])
	dbtest.Product(t, conn, "Standing", "1200.00", category.ID, brand.ID)
	dbtest.Product(t, conn, "Writing", "800.00", category.ID, uuid.Nil)

	got := f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &category.ID, Query: "NORDWOOD"},
	})
	require.Equal(t, []string{"Standing"}, got)

	got = f.names(t, ListProductsInput{
		Filters: ProductListFilters{CategoryID: &category.ID, MaxPrice: price("1000")},
		Sort:    enums.ProductSortPriceDesc,
	})
	require.Equal(t, []string{"Writing"}, got)
}
