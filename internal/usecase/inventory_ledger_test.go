package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
	mock_interfaces "geekgalaxy_pos/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestInventoryLedger_Reserve(t *testing.T) {
	t.Run("invalid quantity", func(t *testing.T) {
		_, err := InventoryLedger{}.Reserve(context.Background(), nil, "p1", 0)
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("quantity above the ceiling", func(t *testing.T) {
		_, err := InventoryLedger{}.Reserve(context.Background(), nil, "p1", math.MaxInt)
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("oversell leaves stock untouched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 2}, nil)

		_, err := InventoryLedger{}.Reserve(context.Background(), tx, "p1", 3)
		var ise *entities.InsufficientStockError
		if !errors.As(err, &ise) || ise.Available != 2 || ise.Requested != 3 {
			t.Fatalf("expected InsufficientStockError 2/3, got %v", err)
		}
	})

	t.Run("exact stock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 3}, nil)
		tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 3, 0).Return(nil)

		left, err := InventoryLedger{}.Reserve(context.Background(), tx, "p1", 3)
		if err != nil || left != 0 {
			t.Fatalf("expected 0 left, got %d err=%v", left, err)
		}
	})

	t.Run("lost compare and set", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 3}, nil)
		tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 3, 2).Return(entities.ErrConcurrentUpdate)

		_, err := InventoryLedger{}.Reserve(context.Background(), tx, "p1", 1)
		if !errors.Is(err, entities.ErrConcurrentUpdate) {
			t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
		}
	})
}

func TestInventoryLedger_Release(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{}, nil)

		_, err := InventoryLedger{}.Release(context.Background(), tx, "p1", 1)
		if !errors.Is(err, entities.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("increments", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 7}, nil)
		tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 7, 10).Return(nil)

		qty, err := InventoryLedger{}.Release(context.Background(), tx, "p1", 3)
		if err != nil || qty != 10 {
			t.Fatalf("expected 10, got %d err=%v", qty, err)
		}
	})

	t.Run("never wraps past the ceiling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 5}, nil)

		_, err := InventoryLedger{}.Release(context.Background(), tx, "p1", entities.MaxStockQuantity)
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("fills up to the ceiling", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		tx := mock_interfaces.NewMockITx(ctrl)
		tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 5}, nil)
		tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 5, entities.MaxStockQuantity).Return(nil)

		qty, err := InventoryLedger{}.Release(context.Background(), tx, "p1", entities.MaxStockQuantity-5)
		if err != nil || qty != entities.MaxStockQuantity {
			t.Fatalf("expected %d, got %d err=%v", entities.MaxStockQuantity, qty, err)
		}
	})
}
