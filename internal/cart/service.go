package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/metrics"
	"github.com/Kai120789/marketplace/pkg/retry"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations for the authenticated user.
type Service interface {
	AddToCart(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Basket, error)
	UpdateQuantity(ctx context.Context, userID, basketID uuid.UUID, count int) (*models.Basket, error)
	RemoveFromCart(ctx context.Context, userID, basketID uuid.UUID) error
	ViewCart(ctx context.Context, userID uuid.UUID) (*View, error)
}

type ServiceParams struct {
	Repo        CartRepository
	Tx          txRunner
	MaxAttempts int
	Metrics     *metrics.CommerceMetrics
	Logger      *logger.Logger
}

type service struct {
	repo        CartRepository
	tx          txRunner
	maxAttempts int
	metrics     *metrics.CommerceMetrics
	logg        *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	attempts := params.MaxAttempts
	if attempts < 1 {
		attempts = retry.DefaultAttempts
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		maxAttempts: attempts,
		metrics:     params.Metrics,
		logg:        logg,
	}, nil
}

// AddToCart adds quantity units of the variant. Repeated adds of the same
// variant accumulate on one row.
func (s *service) AddToCart(ctx context.Context, userID, variantID uuid.UUID, quantity int) (*models.Basket, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	var out *models.Basket
	err := retry.Do(ctx, retry.Options{
		Attempts: s.maxAttempts,
		OnRetry: func(attempt int, err error) {
			s.metrics.IncRetry("cart.add")
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"variant_id": variantID.String(),
				"attempt":    attempt,
				"error":      err.Error(),
			}), "cart upsert retry")
		},
	}, func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			variant, err := repo.FindVariant(ctx, variantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
				}
				return err
			}
			if err := repo.Upsert(ctx, &models.Basket{
				UserID:           userID,
				ProductID:        variant.ProductID,
				ProductVariantID: variant.ID,
				Count:            quantity,
			}); err != nil {
				return err
			}
			line, err := repo.FindByUserVariant(ctx, userID, variantID)
			if err != nil {
				return err
			}
			out = line
			return nil
		})
	})
	if err != nil {
		return nil, classify(err, "add to cart")
	}

	s.metrics.IncCartAdd()
	return out, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, basketID uuid.UUID, count int) (*models.Basket, error) {
	if count < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count must be at least 1").
			WithDetails(map[string]string{"count": "must be at least 1"})
	}

	var out *models.Basket
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.UpdateCountOwned(ctx, userID, basketID, count)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		out, err = repo.FindOwned(ctx, userID, basketID)
		return err
	})
	if err != nil {
		return nil, classify(err, "update cart item")
	}
	return out, nil
}

// RemoveFromCart deletes one of the caller's rows. Rows of other users are
// reported as missing.
func (s *service) RemoveFromCart(ctx context.Context, userID, basketID uuid.UUID) error {
	affected, err := s.repo.DeleteOwned(ctx, userID, basketID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ViewCart prices every line at the current variant price.
func (s *service) ViewCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	view := priceLines(lines)
	return &view, nil
}

func classify(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsTransient(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed concurrently, try again")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
