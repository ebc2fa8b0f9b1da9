package usecase

import (
	"context"
	"fmt"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"
)

// InventoryLedger is the only writer of product quantities. Both operations must run inside a
// unit of work so the read and the compare-and-set commit together with the rest of the change.
type InventoryLedger struct{}

// Reserve takes quantity units out of the product's available stock and returns what is left.
// The check always uses the quantity read through tx, never a cached value.
func (InventoryLedger) Reserve(ctx context.Context, tx interfaces.ITx, productID string, quantity int) (int, error) {
	if err := checkLedgerQuantity(quantity); err != nil {
		return 0, err
	}
	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p.ID == "" {
		return 0, entities.ErrProductNotFound
	}
	if quantity > p.Quantity {
		return 0, &entities.InsufficientStockError{ProductID: productID, Available: p.Quantity, Requested: quantity}
	}

	next := p.Quantity - quantity
	if err := tx.SetProductQuantity(ctx, productID, p.Quantity, next); err != nil {
		return 0, err
	}
	return next, nil
}

// Release returns quantity units to the product's available stock. The result never exceeds
// entities.MaxStockQuantity.
func (InventoryLedger) Release(ctx context.Context, tx interfaces.ITx, productID string, quantity int) (int, error) {
	if err := checkLedgerQuantity(quantity); err != nil {
		return 0, err
	}
	p, err := tx.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p.ID == "" {
		return 0, entities.ErrProductNotFound
	}

	if quantity > entities.MaxStockQuantity-p.Quantity {
		return 0, entities.NewValidationError("quantity", fmt.Sprintf("stock of %s would exceed %d", productID, entities.MaxStockQuantity))
	}
	next := p.Quantity + quantity
	if err := tx.SetProductQuantity(ctx, productID, p.Quantity, next); err != nil {
		return 0, err
	}
	return next, nil
}

func checkLedgerQuantity(quantity int) error {
	if quantity < 1 {
		return entities.NewValidationError("quantity", "must be at least 1")
	}
	if quantity > entities.MaxStockQuantity {
		return entities.NewValidationError("quantity", fmt.Sprintf("must be at most %d", entities.MaxStockQuantity))
	}
	return nil
}
