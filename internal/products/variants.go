package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/models"
	dbtypes "github.com/Kai120789/marketplace/pkg/db/types"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/outbox"
	"github.com/Kai120789/marketplace/pkg/outbox/payloads"
	"github.com/Kai120789/marketplace/pkg/retry"
	"github.com/Kai120789/marketplace/pkg/slug"
)

// AllocateVariantSlug formats the slug of the seq-th variant of a product.
func AllocateVariantSlug(productSlug string, seq int) string {
	return slug.WithSeq(productSlug, seq)
}

// CreateVariant allocates the next sequence number for the product and
// inserts the variant under "{product slug}-{seq}". Numbers are never reused,
// even after deletes. A slug collision re-runs the whole transaction with a
// fresh number.
func (s *service) CreateVariant(ctx context.Context, productID uuid.UUID, req CreateVariantRequest) (*VariantDTO, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}

	var out VariantDTO
	err := retry.Do(ctx, retry.Options{
		Attempts:  s.maxAttempts,
		Retryable: isRawTransient,
		OnRetry: func(attempt int, err error) {
			s.metrics.IncRetry("variant.create")
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"product_id": productID.String(),
				"attempt":    attempt,
				"error":      err.Error(),
			}), "variant slug allocation retry")
		},
	}, func(ctx context.Context) error {
		return s.db.WithTx(ctx, func(tx *gorm.DB) error {
			v, err := s.insertVariant(ctx, NewRepository(tx), tx, productID, req)
			if err != nil {
				return err
			}
			out = VariantFromModel(v)
			return nil
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsTransient(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a unique variant slug")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create variant")
	}
	return &out, nil
}

func (s *service) insertVariant(ctx context.Context, repo *Repository, tx *gorm.DB, productID uuid.UUID, req CreateVariantRequest) (*models.ProductVariant, error) {
	seq, productSlug, err := repo.AllocateVariantSeq(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	product, err := repo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}

	if req.ColorID != nil {
		if _, err := repo.FindColor(ctx, *req.ColorID); err != nil {
			return nil, notFoundOr(err, "color")
		}
		taken, err := repo.VariantColorTaken(ctx, productID, *req.ColorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check variant color")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already has a variant in this color")
		}
	}

	price := product.DefaultPrice
	if req.Price != nil {
		price = req.Price.Round(2)
	}
	images := dbtypes.StringList(req.Images)
	if images == nil {
		images = dbtypes.StringList{}
	}

	v := &models.ProductVariant{
		Name:             req.Name,
		Slug:             AllocateVariantSlug(productSlug, seq),
		ProductID:        product.ID,
		ColorID:          req.ColorID,
		CategoryID:       product.CategoryID,
		BrandID:          product.BrandID,
		Description:      req.Description,
		Images:           images,
		Price:            price,
		TechnicalDrawing: req.TechnicalDrawing,
		ProductURL:       req.ProductURL,
		Seq:              seq,
	}
	// Returned unwrapped; retry.Do only re-runs raw transient errors.
	if err := repo.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	if err := repo.SetDefaultVariantIfEmpty(ctx, product.ID, v.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set default variant")
	}
	if req.ColorID != nil {
		if err := repo.AttachColor(ctx, product.ID, *req.ColorID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach color")
		}
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventVariantCreated,
		AggregateType: enums.AggregateProduct,
		AggregateID:   product.ID,
		Data: payloads.VariantCreatedEvent{
			VariantID: v.ID,
			ProductID: product.ID,
			Slug:      v.Slug,
			Seq:       v.Seq,
		},
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit variant_created")
	}
	return v, nil
}

// DeleteVariant removes the variant. When it was the product default, the
// lowest-seq remaining sibling becomes the default in the same transaction.
func (s *service) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindVariant(ctx, productID, variantID); err != nil {
			return notFoundOr(err, "variant")
		}
		product, err := repo.FindByID(ctx, productID)
		if err != nil {
			return notFoundOr(err, "product")
		}
		if err := repo.DeleteVariant(ctx, variantID); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "variant is still referenced")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete variant")
		}

		if product.DefaultVariantID != nil && *product.DefaultVariantID != variantID {
			return nil
		}
		remaining, err := repo.ListVariants(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list variants")
		}
		var next *uuid.UUID
		if len(remaining) > 0 {
			id := remaining[0].ID
			next = &id
		}
		if err := repo.SetDefaultVariant(ctx, productID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "repoint default variant")
		}
		return nil
	})
}

// isRawTransient matches driver conflicts that have not been turned into a
// typed error yet. Typed errors are final.
func isRawTransient(err error) bool {
	return pkgerrors.As(err) == nil && db.IsTransient(err)
}
