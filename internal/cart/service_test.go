package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/dbtest"
	"github.com/Kai120789/marketplace/pkg/db/models"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/metrics"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCartRepo struct {
	CartRepository
	variant     *models.ProductVariant
	upsertErr   error
	upsertCalls int
}

func (s *stubCartRepo) WithTx(*gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindVariant(context.Context, uuid.UUID) (*models.ProductVariant, error) {
	if s.variant == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.variant, nil
}

func (s *stubCartRepo) Upsert(context.Context, *models.Basket) error {
	s.upsertCalls++
	return s.upsertErr
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	svc, err := NewService(ServiceParams{Repo: &stubCartRepo{}, Tx: stubTx{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	for _, qty := range []int{0, -3} {
		_, err := svc.AddToCart(context.Background(), uuid.New(), uuid.New(), qty)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestAddToCartUnknownVariant(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc, _ := NewService(ServiceParams{Repo: repo, Tx: stubTx{}})
	_, err := svc.AddToCart(context.Background(), uuid.New(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.upsertCalls != 0 {
		t.Fatalf("expected no upsert, got %d", repo.upsertCalls)
	}
}

func TestAddToCartSurfacesConflictAfterRetries(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	repo := &stubCartRepo{
		variant:   &models.ProductVariant{ID: uuid.New(), ProductID: uuid.New()},
		upsertErr: errors.New("UNIQUE constraint failed: baskets.user_id, baskets.product_variant_id"),
	}
	svc, _ := NewService(ServiceParams{Repo: repo, Tx: stubTx{}, MaxAttempts: 3, Metrics: metrics.NewCommerceMetrics(reg)})

	_, err := svc.AddToCart(context.Background(), uuid.New(), repo.variant.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.upsertCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", repo.upsertCalls)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var retries float64
	for _, mf := range mfs {
		if mf.GetName() == "marketplace_write_retries_total" {
			for _, m := range mf.GetMetric() {
				retries += m.GetCounter().GetValue()
			}
		}
	}
	if retries != 2 {
		t.Fatalf("expected 2 recorded retries, got %v", retries)
	}
}

type cartFixture struct {
	client  *db.Client
	svc     Service
	user    models.User
	variant models.ProductVariant
}

func newCartFixture(t *testing.T) cartFixture {
	t.Helper()
	return seedCartFixture(t, dbtest.New(t))
}

func seedCartFixture(t *testing.T, client *db.Client) cartFixture {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(client.DB()), Tx: client, MaxAttempts: 5})
	require.NoError(t, err)

	user := dbtest.User(t, client.DB(), "buyer-"+uuid.NewString()[:8]+"@example.com")
	product := dbtest.Product(t, client.DB(), "Desk", "1000.00", uuid.Nil, uuid.Nil)
	variant := dbtest.Variant(t, client.DB(), product, 1, "1000.00")
	return cartFixture{client: client, svc: svc, user: user, variant: variant}
}

func TestAddToCartAccumulatesOnOneRow(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddToCart(ctx, f.user.ID, f.variant.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, first.Count)
	require.Equal(t, f.variant.ProductID, first.ProductID)

	second, err := f.svc.AddToCart(ctx, f.user.ID, f.variant.ID, 2)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 3, second.Count)

	var rows int64
	require.NoError(t, f.client.DB().Model(&models.Basket{}).Count(&rows).Error)
	require.EqualValues(t, 1, rows)
}

// On sqlite the single pooled connection serializes the workers; the
// Postgres variant runs them against the ON CONFLICT upsert for real.
func TestConcurrentAddsKeepEveryUnit(t *testing.T) {
	addConcurrently(t, newCartFixture(t), 10)
}

func TestConcurrentAddsKeepEveryUnitOnPostgres(t *testing.T) {
	addConcurrently(t, seedCartFixture(t, dbtest.Postgres(t)), 32)
}

func addConcurrently(t *testing.T, f cartFixture, workers int) {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddToCart(ctx, f.user.ID, f.variant.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var lines []models.Basket
	require.NoError(t, f.client.DB().Where("user_id = ?", f.user.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	require.Equal(t, workers, lines[0].Count)
}

func TestViewCartTotalsAtCurrentPrice(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	other := dbtest.Variant(t, f.client.DB(), dbtest.Product(t, f.client.DB(), "Lamp", "200.00", uuid.Nil, uuid.Nil), 1, "200.00")
	_, err := f.svc.AddToCart(ctx, f.user.ID, f.variant.ID, 3)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user.ID, other.ID, 1)
	require.NoError(t, err)

	view, err := f.svc.ViewCart(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	require.True(t, decimal.RequireFromString("3200").Equal(view.Total), "total=%s", view.Total)

	require.NoError(t, f.client.DB().Model(&models.ProductVariant{}).
		Where("id = ?", f.variant.ID).UpdateColumn("price", decimal.RequireFromString("1200.00")).Error)
	view, err = f.svc.ViewCart(ctx, f.user.ID)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("3800").Equal(view.Total), "total=%s", view.Total)

	empty, err := f.svc.ViewCart(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, empty.Lines)
	require.True(t, empty.Total.IsZero())
}

func TestRemoveAndUpdateRespectOwnership(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	stranger := dbtest.User(t, f.client.DB(), "stranger@example.com")

	line, err := f.svc.AddToCart(ctx, f.user.ID, f.variant.ID, 1)
	require.NoError(t, err)

	err = f.svc.RemoveFromCart(ctx, stranger.ID, line.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	_, err = f.svc.UpdateQuantity(ctx, stranger.ID, line.ID, 5)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	updated, err := f.svc.UpdateQuantity(ctx, f.user.ID, line.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, updated.Count)

	_, err = f.svc.UpdateQuantity(ctx, f.user.ID, line.ID, 0)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	require.NoError(t, f.svc.RemoveFromCart(ctx, f.user.ID, line.ID))
	err = f.svc.RemoveFromCart(ctx, f.user.ID, line.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
