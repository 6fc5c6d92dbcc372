package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/dbtest"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/outbox"
)

func newTestService(t *testing.T) (*db.Client, Service) {
	t.Helper()
	client := dbtest.New(t)
	outboxRepo := outbox.NewRepository(client.DB())
	svc, err := NewService(ServiceParams{
		DB:     client,
		Outbox: outbox.NewService(outboxRepo, logger.Nop()),
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	return client, svc
}

func avgRating(t *testing.T, client *db.Client, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	var p models.Product
	require.NoError(t, client.DB().First(&p, "id = ?", productID).Error)
	return p.AvgRating
}

func TestNewRatingBounds(t *testing.T) {
	for _, v := range []int{1, 3, 5} {
		r, err := NewRating(v)
		require.NoError(t, err)
		require.Equal(t, v, r.Int())
	}
	for _, v := range []int{0, 6, -1} {
		_, err := NewRating(v)
		require.Error(t, err)
		require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestCreateReviewUpdatesAverage(t *testing.T) {
	client, svc := newTestService(t)
	ctx := context.Background()
	user := dbtest.User(t, client.DB(), "reviewer@example.com")
	product := dbtest.Product(t, client.DB(), "Chair", "100.00", uuid.Nil, uuid.Nil)
	actor := Actor{UserID: user.ID, Role: enums.UserRoleConsumer}

	for _, score := range []int{5, 4, 4} {
		_, err := svc.CreateReview(ctx, actor, product.ID, CreateReviewInput{Rating: score, Name: "Solid"})
		require.NoError(t, err)
	}

	// (5+4+4)/3 = 4.333...
	require.True(t, decimal.RequireFromString("4.33").Equal(avgRating(t, client, product.ID)), "avg=%s", avgRating(t, client, product.ID))

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Where("event_type = ?", enums.EventReviewCreated).Find(&events).Error)
	require.Len(t, events, 3)
}

func TestCreateReviewRejectsBadInput(t *testing.T) {
	client, svc := newTestService(t)
	ctx := context.Background()
	product := dbtest.Product(t, client.DB(), "Lamp", "10.00", uuid.Nil, uuid.Nil)

	_, err := svc.CreateReview(ctx, Actor{}, product.ID, CreateReviewInput{Rating: 7, Name: "Too good"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateReview(ctx, Actor{}, product.ID, CreateReviewInput{Rating: 3, Name: "  "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateReview(ctx, Actor{}, uuid.New(), CreateReviewInput{Rating: 3, Name: "Ghost"})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, client.DB().Model(&models.Review{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteReviewPermissionsAndRecompute(t *testing.T) {
	client, svc := newTestService(t)
	ctx := context.Background()
	author := dbtest.User(t, client.DB(), "author@example.com")
	other := dbtest.User(t, client.DB(), "other@example.com")
	product := dbtest.Product(t, client.DB(), "Table", "250.00", uuid.Nil, uuid.Nil)

	low, err := svc.CreateReview(ctx, Actor{UserID: author.ID}, product.ID, CreateReviewInput{Rating: 1, Name: "Wobbly"})
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, Actor{UserID: other.ID}, product.ID, CreateReviewInput{Rating: 5, Name: "Great"})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(3).Equal(avgRating(t, client, product.ID)))

	err = svc.DeleteReview(ctx, Actor{UserID: other.ID, Role: enums.UserRoleConsumer}, low.ID)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, svc.DeleteReview(ctx, Actor{UserID: author.ID}, low.ID))
	require.True(t, decimal.NewFromInt(5).Equal(avgRating(t, client, product.ID)))

	err = svc.DeleteReview(ctx, Actor{UserID: author.ID}, low.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestAdminDeletesLastReviewResetsAverage(t *testing.T) {
	client, svc := newTestService(t)
	ctx := context.Background()
	user := dbtest.User(t, client.DB(), "solo@example.com")
	product := dbtest.Product(t, client.DB(), "Shelf", "40.00", uuid.Nil, uuid.Nil)

	review, err := svc.CreateReview(ctx, Actor{UserID: user.ID}, product.ID, CreateReviewInput{Rating: 2, Name: "Meh"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, review.ID))
	require.True(t, avgRating(t, client, product.ID).IsZero())
}

func TestListReviewsNewestFirst(t *testing.T) {
	client, svc := newTestService(t)
	ctx := context.Background()
	product := dbtest.Product(t, client.DB(), "Sofa", "900.00", uuid.Nil, uuid.Nil)

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.CreateReview(ctx, Actor{}, product.ID, CreateReviewInput{Rating: 4, Name: name})
		require.NoError(t, err)
	}

	page, err := svc.ListReviews(ctx, product.ID, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 3)

	id, err := svc.ResolveProduct(ctx, product.Slug)
	require.NoError(t, err)
	require.Equal(t, product.ID, id)

	_, err = svc.ResolveProduct(ctx, "missing")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
