package interfaces

import (
	"context"

	"geekgalaxy_pos/internal/domain/entities"
)

//go:generate mockgen -source=unit_of_work_interface.go -destination=mocks/mock_unit_of_work_interface.go -package=mock_interfaces

// IUnitOfWork runs fn atomically. Every write made through the ITx is committed together
// when fn returns nil and discarded otherwise. Implementations may run fn more than once
// when an optimistic conflict is detected before commit, so fn must not have side effects
// outside the ITx.
type IUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx ITx) error) error
}

// ITx is the transactional view of the store.
//
// Reads observe the latest committed state plus the writes already made in the same ITx.
// Lookups return zero values and a nil error when nothing matches.
type ITx interface {
	GetProduct(ctx context.Context, id string) (entities.Product, error)
	GetClient(ctx context.Context, id string) (entities.Client, error)
	// SetProductQuantity stores next only if the quantity is still expected,
	// otherwise it fails with entities.ErrConcurrentUpdate.
	SetProductQuantity(ctx context.Context, id string, expected, next int) error
	GetSale(ctx context.Context, id string) (entities.Sale, error)
	InsertSale(ctx context.Context, s entities.Sale) error
	// UpdateSale replaces the stored sale, items included, if its version is still expectedVersion.
	UpdateSale(ctx context.Context, s entities.Sale, expectedVersion int64) error
}
