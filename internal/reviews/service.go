package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/metrics"
	"github.com/Kai120789/marketplace/pkg/outbox"
	"github.com/Kai120789/marketplace/pkg/outbox/payloads"
	"github.com/Kai120789/marketplace/pkg/pagination"
)

type CreateReviewInput struct {
	Rating         int     `json:"rating"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Photo          *string `json:"photo,omitempty"`
	VideoReviewURL *string `json:"video_review_url,omitempty"`
}

func (in CreateReviewInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 120)),
		validation.Field(&in.Description, validation.RuneLength(0, 5000)),
		validation.Field(&in.Photo, is.URL),
		validation.Field(&in.VideoReviewURL, is.URL),
	)
}

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type Service interface {
	ResolveProduct(ctx context.Context, productSlug string) (uuid.UUID, error)
	CreateReview(ctx context.Context, actor Actor, productID uuid.UUID, input CreateReviewInput) (*models.Review, error)
	ListReviews(ctx context.Context, productID uuid.UUID, page int) (pagination.Result[models.Review], error)
	DeleteReview(ctx context.Context, actor Actor, reviewID uuid.UUID) error
}

type ServiceParams struct {
	DB      *db.Client
	Outbox  outbox.Emitter
	Metrics *metrics.CommerceMetrics
	Logger  *logger.Logger
}

type service struct {
	db      *db.Client
	outbox  outbox.Emitter
	metrics *metrics.CommerceMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{db: params.DB, outbox: params.Outbox, metrics: params.Metrics, logg: logg}, nil
}

func (s *service) ResolveProduct(ctx context.Context, productSlug string) (uuid.UUID, error) {
	id, err := NewRepository(s.db.DB()).ProductIDBySlug(ctx, strings.TrimSpace(productSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve product")
	}
	return id, nil
}

// CreateReview stores the review and refreshes products.avg_rating in the
// same transaction.
func (s *service) CreateReview(ctx context.Context, actor Actor, productID uuid.UUID, input CreateReviewInput) (*models.Review, error) {
	rating, err := NewRating(input.Rating)
	if err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := pkgerrors.FromValidation(input.Validate()); err != nil {
		return nil, err
	}

	var userID *uuid.UUID
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		userID = &id
	}
	review := &models.Review{
		ProductID:      productID,
		UserID:         userID,
		Rating:         int16(rating),
		Name:           input.Name,
		Description:    input.Description,
		Photo:          input.Photo,
		VideoReviewURL: input.VideoReviewURL,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		found, err := repo.TouchProduct(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock product")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := repo.Create(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		avg, err := repo.RecomputeAverage(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute rating")
		}

		var actorRef *outbox.ActorRef
		if userID != nil {
			actorRef = &outbox.ActorRef{UserID: *userID, Role: actor.Role}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewCreated,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Actor:         actorRef,
			Data: payloads.ReviewCreatedEvent{
				ReviewID:  review.ID,
				ProductID: productID,
				Rating:    rating.Int(),
				AvgRating: avg,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit review_created")
		}
		return nil, err
	}

	s.metrics.IncReview()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"review_id":  review.ID.String(),
		"product_id": productID.String(),
	}), "review created")
	return review, nil
}

func (s *service) ListReviews(ctx context.Context, productID uuid.UUID, page int) (pagination.Result[models.Review], error) {
	out, err := NewRepository(s.db.DB()).ListByProduct(ctx, productID, pagination.New(page, pagination.DefaultPageSize))
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return out, nil
}

// DeleteReview is allowed for the author and for admins.
func (s *service) DeleteReview(ctx context.Context, actor Actor, reviewID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		review, err := repo.Find(ctx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
		}
		isAuthor := review.UserID != nil && *review.UserID == actor.UserID
		if !isAuthor && actor.Role != enums.UserRoleAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or an admin can delete a review")
		}
		if _, err := repo.TouchProduct(ctx, review.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock product")
		}
		if err := repo.Delete(ctx, reviewID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
		}
		if _, err := repo.RecomputeAverage(ctx, review.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute rating")
		}
		return nil
	})
}
