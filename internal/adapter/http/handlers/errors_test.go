package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", entities.NewValidationError("items", "empty"), http.StatusBadRequest, "INVALID_REQUEST"},
		{"wrapped stock", fmt.Errorf("reserve: %w", &entities.InsufficientStockError{ProductID: "p1"}), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"transition", &entities.InvalidTransitionError{SaleID: "s1"}, http.StatusConflict, "INVALID_TRANSITION"},
		{"denied", &entities.PermissionDeniedError{Action: entities.ActionSaleRemoveItem}, http.StatusForbidden, "PERMISSION_DENIED"},
		{"sale not found", entities.ErrSaleNotFound, http.StatusNotFound, "SALE_NOT_FOUND"},
		{"item not found", entities.ErrSaleItemNotFound, http.StatusNotFound, "SALE_ITEM_NOT_FOUND"},
		{"product not found", entities.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"client not found", entities.ErrClientNotFound, http.StatusNotFound, "CLIENT_NOT_FOUND"},
		{"client exists", entities.ErrClientExists, http.StatusConflict, "CLIENT_ALREADY_EXISTS"},
		{"conflict", entities.ErrConcurrentUpdate, http.StatusServiceUnavailable, "PERSISTENCE_UNAVAILABLE"},
		{"transaction deadline", &entities.PersistenceError{Op: "create sale", Err: context.DeadlineExceeded}, http.StatusServiceUnavailable, "PERSISTENCE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.HTTPStatus != tt.status || got.Code != tt.code {
				t.Fatalf("expected %d %s, got %d %s", tt.status, tt.code, got.HTTPStatus, got.Code)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("expected app error to wrap %v", tt.err)
			}
		})
	}
}
