package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	"github.com/Kai120789/marketplace/pkg/retry"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines checkout and order history operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDetail, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page int) (pagination.Result[OrderDTO], error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error)
	UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, req FulfillmentRequest) (*OrderDTO, error)
}

type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Outbox       outboxPublisher
	BasketPolicy enums.BasketPolicy
	MaxAttempts  int
	Metrics      *metrics.CommerceMetrics
	Logger       *logger.Logger
}

type service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	policy      enums.BasketPolicy
	maxAttempts int
	metrics     *metrics.CommerceMetrics
	logg        *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	policy := params.BasketPolicy
	if policy == "" {
		policy = enums.BasketPolicyClear
	}
	if policy != enums.BasketPolicyClear && policy != enums.BasketPolicyRetain {
		return nil, fmt.Errorf("unsupported basket policy %q", policy)
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
		outbox:      params.Outbox,
		policy:      policy,
		maxAttempts: attempts,
		metrics:     params.Metrics,
		logg:        logg,
	}, nil
}

// PlaceOrder turns the selected basket rows into an order. The total, the
// line snapshots, the outbox event and the basket cleanup commit together.
// Serialization failures, deadlocks and basket rows edited mid-checkout re-run
// the whole transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDetail, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var detail *OrderDetail
	err := retry.Do(ctx, retry.Options{
		Attempts:  s.maxAttempts,
		Retryable: retryableCheckout,
		OnRetry: func(attempt int, err error) {
			s.metrics.IncRetry("order.place")
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"attempt": attempt,
				"error":   err.Error(),
			}), "checkout retry")
		},
	}, func(ctx context.Context) error {
		var err error
		detail, err = s.placeOrderTx(ctx, input)
		return err
	})
	if err != nil {
		if db.IsTransient(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "checkout conflicted with a concurrent change, try again")
		}
		return nil, err
	}

	s.metrics.ObserveOrder(detail.Order.FullPrice.InexactFloat64())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":   detail.Order.ID.String(),
		"full_price": detail.Order.FullPrice.String(),
		"lines":      len(detail.Lines),
	}), "order placed")
	return detail, nil
}

func (s *service) placeOrderTx(ctx context.Context, input PlaceOrderInput) (*OrderDetail, error) {
	requested := uniqueIDs(input.BasketIDs)

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lines, err := repo.SelectBasketLines(ctx, input.UserID, requested)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load basket")
		}
		if len(requested) > 0 && len(lines) != len(requested) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "nothing to order")
		}

		if input.AddressID != nil {
			owned, err := repo.AddressOwned(ctx, input.UserID, *input.AddressID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
			}
			if !owned {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
		}

		fullPrice := decimal.Zero
		for _, line := range lines {
			fullPrice = fullPrice.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Count))))
		}
		fullPrice = fullPrice.Round(2)

		order := &models.Order{
			UserID:    input.UserID,
			AddressID: input.AddressID,
			FullPrice: fullPrice,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		basketOrders := make([]models.BasketOrder, 0, len(lines))
		productOrders := make([]models.ProductOrder, 0, len(lines))
		eventLines := make([]payloads.OrderLine, 0, len(lines))
		for _, line := range lines {
			basketID := line.BasketID
			variantID := line.ProductVariantID
			basketOrders = append(basketOrders, models.BasketOrder{
				BasketID:         &basketID,
				OrderID:          order.ID,
				ProductVariantID: &variantID,
				ProductName:      line.ProductName,
				VariantName:      line.VariantName,
				Count:            line.Count,
				UnitPrice:        line.UnitPrice,
			})
			productOrders = append(productOrders, models.ProductOrder{
				ProductID:        line.ProductID,
				ProductVariantID: line.ProductVariantID,
				OrderID:          order.ID,
			})
			eventLines = append(eventLines, payloads.OrderLine{
				ProductID:        line.ProductID,
				ProductVariantID: line.ProductVariantID,
				Count:            line.Count,
				UnitPrice:        line.UnitPrice,
			})
		}
		if err := repo.CreateBasketOrders(ctx, basketOrders); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot basket lines")
		}
		if err := repo.CreateProductOrders(ctx, productOrders); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link ordered products")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: input.Role},
			Data: payloads.OrderPlacedEvent{
				OrderID:   order.ID,
				UserID:    input.UserID,
				AddressID: input.AddressID,
				FullPrice: fullPrice,
				Lines:     eventLines,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit order_placed")
		}

		if s.policy == enums.BasketPolicyClear {
			if err := repo.ClearBaskets(ctx, input.UserID, lines); err != nil {
				if errors.Is(err, ErrBasketChanged) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed during checkout, try again")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear basket")
			}
		}

		orderLines, err := repo.ListOrderLines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
		}
		detail = &OrderDetail{Order: OrderFromModel(*order), Lines: priceOrderLines(orderLines)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func retryableCheckout(err error) bool {
	return errors.Is(err, ErrBasketChanged) || db.IsTransient(err)
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, page int) (pagination.Result[OrderDTO], error) {
	res, err := s.repo.ListOrders(ctx, userID, pagination.New(page, pagination.DefaultPageSize))
	if err != nil {
		return pagination.Result[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(res.Items))
	for _, o := range res.Items {
		items = append(items, OrderFromModel(o))
	}
	return pagination.Result[OrderDTO]{
		Items:    items,
		Total:    res.Total,
		Page:     res.Page,
		PageSize: res.PageSize,
		HasNext:  res.HasNext,
	}, nil
}

// GetOrder returns the order with its lines. Other users' orders are reported
// as missing unless the caller is an admin.
func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, orderNotFoundOr(err)
	}
	if order.UserID != actor.UserID && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	lines, err := s.repo.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
	}
	return &OrderDetail{Order: OrderFromModel(*order), Lines: priceOrderLines(lines)}, nil
}

// UpdateFulfillment records the invoice and tracking link. Nothing else on a
// placed order may change.
func (s *service) UpdateFulfillment(ctx context.Context, actor Actor, orderID uuid.UUID, req FulfillmentRequest) (*OrderDTO, error) {
	if !actor.Role.CanManageCatalog() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "fulfillment updates require seller or admin role")
	}
	if req.Invoice != nil {
		trimmed := strings.TrimSpace(*req.Invoice)
		req.Invoice = &trimmed
	}
	if err := pkgerrors.FromValidation(req.Validate()); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if req.Invoice != nil {
		updates["invoice"] = *req.Invoice
	}
	if req.TrackingURL != nil {
		updates["tracking_url"] = *req.TrackingURL
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice or tracking_url required")
	}

	var out OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		affected, err := repo.UpdateFulfillment(ctx, orderID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update fulfillment")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return orderNotFoundOr(err)
		}
		out = OrderFromModel(*order)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFulfillmentUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role},
			Data: payloads.OrderFulfillmentUpdatedEvent{
				OrderID:     order.ID,
				UserID:      order.UserID,
				Invoice:     order.Invoice,
				TrackingURL: order.TrackingURL,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit order_fulfillment_updated")
		}
		return nil, err
	}
	return &out, nil
}

func priceOrderLines(lines []OrderLine) []OrderLine {
	if lines == nil {
		return []OrderLine{}
	}
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Count)))
	}
	return lines
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func orderNotFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
