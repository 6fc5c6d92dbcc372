package product

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Kai120789/marketplace/internal/catalog"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/dbtest"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/outbox"
	redisclient "github.com/Kai120789/marketplace/pkg/redis"
)

type fakeCache struct {
	mu     sync.Mutex
	values map[string]any
	gets   int
	sets   int
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return redisclient.ErrCacheMiss
	}
	*(dest.(*IndexPage)) = *(v.(*IndexPage))
	return nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.values[key] = value
	return nil
}

func (c *fakeCache) CacheKey(parts ...string) string {
	return fmt.Sprint(parts)
}

type fixture struct {
	client *db.Client
	svc    Service
	outbox *outbox.Repository
	cache  *fakeCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWith(t, dbtest.New(t))
}

func newFixtureWith(t *testing.T, client *db.Client) fixture {
	t.Helper()
	outboxRepo := outbox.NewRepository(client.DB())
	cache := &fakeCache{values: map[string]any{}}
	svc, err := NewService(ServiceParams{
		DB:     client,
		Outbox: outbox.NewService(outboxRepo, logger.Nop()),
		Brands: catalog.NewRepository(client.DB()),
		Cache:  cache,
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	return fixture{client: client, svc: svc, outbox: outboxRepo, cache: cache}
}

func (f fixture) product(t *testing.T, name string) *ProductDTO {
	t.Helper()
	conn := f.client.DB()
	category := dbtest.Category(t, conn, "Desks", "desks-"+uuid.NewString()[:6])
	brand := dbtest.Brand(t, conn, "Woodline")
	p, err := f.svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:         name,
		CategoryID:   category.ID,
		BrandID:      brand.ID,
		DefaultPrice: decimal.RequireFromString("1500.00"),
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "Oak Desk")
	require.Equal(t, "oak-desk", p.Slug)
	require.True(t, p.AvgRating.IsZero())

	_, err := f.svc.CreateProduct(ctx, CreateProductRequest{
		Name:         "Oak desk",
		CategoryID:   p.CategoryID,
		BrandID:      p.BrandID,
		DefaultPrice: decimal.NewFromInt(10),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = f.svc.CreateProduct(ctx, CreateProductRequest{
		Name:         "Pine Desk",
		CategoryID:   uuid.New(),
		BrandID:      p.BrandID,
		DefaultPrice: decimal.NewFromInt(10),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	cases := []CreateProductRequest{
		{Name: "ab", CategoryID: p.CategoryID, BrandID: p.BrandID, DefaultPrice: decimal.NewFromInt(10)},
		{Name: "Zero Price", CategoryID: p.CategoryID, BrandID: p.BrandID, DefaultPrice: decimal.Zero},
		{Name: "No Category", BrandID: p.BrandID, DefaultPrice: decimal.NewFromInt(10)},
		{Name: "Fraction", CategoryID: p.CategoryID, BrandID: p.BrandID, DefaultPrice: decimal.RequireFromString("1.005")},
	}
	for _, req := range cases {
		_, err := f.svc.CreateProduct(ctx, req)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: got %v", req.Name, err)
	}
}

func TestCreateProductNonLatinNameGetsFallbackSlug(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Стол письменный")
	require.Regexp(t, `^product-[0-9a-f]{8}$`, p.Slug)
}

func TestCreateVariantAllocatesSequentialSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")

	first, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Natural"})
	require.NoError(t, err)
	require.Equal(t, "oak-desk-1", first.Slug)
	require.Equal(t, 1, first.Seq)
	require.True(t, first.Price.Equal(decimal.RequireFromString("1500")))
	require.Equal(t, []string{}, first.Images)

	price := decimal.RequireFromString("1750.50")
	second, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Dark", Price: &price})
	require.NoError(t, err)
	require.Equal(t, "oak-desk-2", second.Slug)
	require.True(t, second.Price.Equal(price))

	var stored models.ProductVariant
	require.NoError(t, f.client.DB().First(&stored, "id = ?", second.ID).Error)
	require.Equal(t, p.CategoryID, stored.CategoryID)
	require.Equal(t, p.BrandID, stored.BrandID)

	var product models.Product
	require.NoError(t, f.client.DB().First(&product, "id = ?", p.ID).Error)
	require.NotNil(t, product.DefaultVariantID)
	require.Equal(t, first.ID, *product.DefaultVariantID)
	require.Equal(t, 2, product.VariantSeq)

	events, err := f.outbox.ListByAggregate(nil, p.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, enums.EventVariantCreated, events[0].EventType)

	_, err = f.svc.CreateVariant(ctx, uuid.New(), CreateVariantRequest{Name: "Ghost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestVariantNumbersAreNeverReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")

	_, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "One"})
	require.NoError(t, err)
	second, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Two"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteVariant(ctx, p.ID, second.ID))

	third, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Three"})
	require.NoError(t, err)
	require.Equal(t, "oak-desk-3", third.Slug)
}

// The sqlite pool holds one connection, so there the workers run one after
// another; the Postgres variant below races them on the product row lock.
func TestConcurrentVariantCreationYieldsDistinctSlugs(t *testing.T) {
	f := newFixture(t)
	createVariantsConcurrently(t, f, f.product(t, "Oak Desk"), 8)
}

func TestConcurrentVariantCreationOnPostgres(t *testing.T) {
	f := newFixtureWith(t, dbtest.Postgres(t))
	createVariantsConcurrently(t, f, f.product(t, "Desk "+uuid.NewString()[:8]), 16)
}

func createVariantsConcurrently(t *testing.T, f fixture, p *ProductDTO, workers int) {
	t.Helper()
	var wg sync.WaitGroup
	slugs := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := f.svc.CreateVariant(context.Background(), p.ID, CreateVariantRequest{Name: fmt.Sprintf("V%d", i)})
			if err != nil {
				errs <- err
				return
			}
			slugs <- v.Slug
		}(i)
	}
	wg.Wait()
	close(slugs)
	close(errs)

	for err := range errs {
		t.Fatalf("create variant: %v", err)
	}
	seen := map[string]bool{}
	for s := range slugs {
		require.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}
	require.Len(t, seen, workers)
	for i := 1; i <= workers; i++ {
		require.True(t, seen[fmt.Sprintf("%s-%d", p.Slug, i)])
	}

	var product models.Product
	require.NoError(t, f.client.DB().First(&product, "id = ?", p.ID).Error)
	require.Equal(t, workers, product.VariantSeq)
}

func TestDeleteOrderedVariantKeepsOrderOnPostgres(t *testing.T) {
	f := newFixtureWith(t, dbtest.Postgres(t))
	ctx := context.Background()
	conn := f.client.DB()
	p := f.product(t, "Desk "+uuid.NewString()[:8])
	v1, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "One"})
	require.NoError(t, err)
	v2, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Two"})
	require.NoError(t, err)

	buyer := dbtest.User(t, conn, "buyer-"+uuid.NewString()[:8]+"@example.com")
	order := models.Order{UserID: buyer.ID, FullPrice: decimal.RequireFromString("1500.00")}
	require.NoError(t, conn.Create(&order).Error)
	variantID := v1.ID
	line := models.BasketOrder{
		OrderID:          order.ID,
		ProductVariantID: &variantID,
		ProductName:      p.Name,
		VariantName:      v1.Name,
		Count:            1,
		UnitPrice:        decimal.RequireFromString("1500.00"),
	}
	require.NoError(t, conn.Create(&line).Error)
	require.NoError(t, conn.Create(&models.ProductOrder{ProductID: p.ID, ProductVariantID: v1.ID, OrderID: order.ID}).Error)

	require.NoError(t, f.svc.DeleteVariant(ctx, p.ID, v1.ID))

	var kept models.BasketOrder
	require.NoError(t, conn.First(&kept, "id = ?", line.ID).Error)
	require.Nil(t, kept.ProductVariantID)
	require.Equal(t, v1.Name, kept.VariantName)
	require.Equal(t, 1, kept.Count)

	var links int64
	require.NoError(t, conn.Model(&models.ProductOrder{}).Where("order_id = ?", order.ID).Count(&links).Error)
	require.Zero(t, links)

	detail, err := f.svc.GetProductDetail(ctx, p.Slug, "")
	require.NoError(t, err)
	require.Equal(t, v2.ID, detail.Variant.ID)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	require.NoError(t, conn.First(&models.Order{}, "id = ?", order.ID).Error)
}

func TestCreateVariantRejectsDuplicateColor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")
	color := dbtest.Color(t, f.client.DB(), "Walnut", "#5d432c")

	_, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Walnut", ColorID: &color.ID})
	require.NoError(t, err)

	_, err = f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Walnut again", ColorID: &color.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	detail, err := f.svc.GetProductDetail(ctx, p.Slug, "")
	require.NoError(t, err)
	require.Len(t, detail.Colors, 1)
	require.Equal(t, "Walnut", detail.Colors[0].Name)
}

func TestDeleteDefaultVariantRepointsToLowestSeq(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")

	v1, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "One"})
	require.NoError(t, err)
	_, err = f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Two"})
	require.NoError(t, err)
	v3, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Three"})
	require.NoError(t, err)

	detail, err := f.svc.GetProductDetail(ctx, p.Slug, "")
	require.NoError(t, err)
	require.Equal(t, v1.ID, detail.Variant.ID)
	require.Len(t, detail.Siblings, 2)

	require.NoError(t, f.svc.DeleteVariant(ctx, p.ID, v1.ID))

	detail, err = f.svc.GetProductDetail(ctx, p.Slug, "")
	require.NoError(t, err)
	require.Equal(t, "oak-desk-2", detail.Variant.Slug)
	require.NotNil(t, detail.Product.DefaultVariantID)
	require.Equal(t, detail.Variant.ID, *detail.Product.DefaultVariantID)

	picked, err := f.svc.GetProductDetail(ctx, p.Slug, v3.Slug)
	require.NoError(t, err)
	require.Equal(t, v3.ID, picked.Variant.ID)

	_, err = f.svc.GetProductDetail(ctx, p.Slug, "oak-desk-99")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = f.svc.DeleteVariant(ctx, p.ID, v1.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteLastVariantClearsDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")

	v, err := f.svc.CreateVariant(ctx, p.ID, CreateVariantRequest{Name: "Only"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteVariant(ctx, p.ID, v.ID))

	detail, err := f.svc.GetProductDetail(ctx, p.Slug, "")
	require.NoError(t, err)
	require.Nil(t, detail.Variant)
	require.Nil(t, detail.Product.DefaultVariantID)
	require.Empty(t, detail.Siblings)
}

func TestProductColorsAttachAndDetach(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Oak Desk")
	color := dbtest.Color(t, f.client.DB(), "Black", "black")

	require.NoError(t, f.svc.AttachColor(ctx, p.ID, color.ID))
	require.NoError(t, f.svc.AttachColor(ctx, p.ID, color.ID))

	require.True(t, pkgerrors.IsCode(f.svc.AttachColor(ctx, p.ID, uuid.New()), pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.DetachColor(ctx, p.ID, color.ID))
	require.True(t, pkgerrors.IsCode(f.svc.DetachColor(ctx, p.ID, color.ID), pkgerrors.CodeNotFound))
}

func TestIndexIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.product(t, fmt.Sprintf("Desk Model %d", i))
	}

	first, err := f.svc.Index(ctx)
	require.NoError(t, err)
	require.Len(t, first.Products, indexProductCount)
	require.Len(t, first.Brands, 5)
	require.Equal(t, 1, f.cache.sets)

	second, err := f.svc.Index(ctx)
	require.NoError(t, err)
	require.Equal(t, first.Products[0].ID, second.Products[0].ID)
	require.Equal(t, 1, f.cache.sets)
	require.Equal(t, 2, f.cache.gets)
}
