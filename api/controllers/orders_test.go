package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Kai120789/marketplace/api/middleware"
	"github.com/Kai120789/marketplace/internal/orders"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
)

type stubOrderService struct {
	orders.Service
	input orders.PlaceOrderInput
	err   error
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDetail, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDetail{}, nil
}

func TestOrderPlacePassesActorAndSelection(t *testing.T) {
	userID := uuid.New()
	basketID := uuid.New()
	addressID := uuid.New()
	stub := &stubOrderService{}

	body := []byte(`{"address_id":"` + addressID.String() + `","basket_ids":["` + basketID.String() + `"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), userID, enums.UserRoleConsumer))
	rec := httptest.NewRecorder()

	OrderPlace(stub, logger.Nop()).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.input.UserID != userID || stub.input.Role != enums.UserRoleConsumer {
		t.Fatalf("unexpected actor %+v", stub.input)
	}
	if stub.input.AddressID == nil || *stub.input.AddressID != addressID {
		t.Fatalf("expected address %s", addressID)
	}
	if len(stub.input.BasketIDs) != 1 || stub.input.BasketIDs[0] != basketID {
		t.Fatalf("unexpected basket selection %v", stub.input.BasketIDs)
	}
}

func TestOrderPlaceMapsServiceErrors(t *testing.T) {
	cases := map[pkgerrors.Code]int{
		pkgerrors.CodeValidation: http.StatusBadRequest,
		pkgerrors.CodeNotFound:   http.StatusNotFound,
		pkgerrors.CodeConflict:   http.StatusConflict,
	}
	for code, want := range cases {
		stub := &stubOrderService{err: pkgerrors.New(code, "order failed")}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{}`)))
		req = req.WithContext(middleware.WithActor(req.Context(), uuid.New(), enums.UserRoleConsumer))
		rec := httptest.NewRecorder()

		OrderPlace(stub, logger.Nop()).ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("code %s: expected %d, got %d", code, want, rec.Code)
		}
	}
}

func TestOrderPlaceRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{"full_price":"1.00"}`)))
	req = req.WithContext(middleware.WithActor(req.Context(), uuid.New(), enums.UserRoleConsumer))
	rec := httptest.NewRecorder()

	OrderPlace(&stubOrderService{}, logger.Nop()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
