package interfaces

import "context"

//go:generate mockgen -source=idempotency_store_interface.go -destination=mocks/mock_idempotency_store_interface.go -package=mock_interfaces

// IIdempotencyStore remembers which sale a retried create request already produced.
//
// Claim returns claimed=true when the caller owns the key and must create the sale.
// Otherwise saleID holds the sale created earlier. A key still being processed
// fails with entities.ErrIdempotencyInFlight.
type IIdempotencyStore interface {
	Claim(ctx context.Context, key string) (saleID string, claimed bool, err error)
	Complete(ctx context.Context, key, saleID string) error
	Release(ctx context.Context, key string) error
}
