package interfaces

import (
	"context"

	"geekgalaxy_pos/internal/domain/entities"
)

//go:generate mockgen -source=sale_repository_interface.go -destination=mocks/mock_sale_repository_interface.go -package=mock_interfaces

// ISaleRepository is the read side of sale persistence.
// GetByID returns a zero Sale and a nil error when the id is unknown.
type ISaleRepository interface {
	GetByID(ctx context.Context, id string) (entities.Sale, error)
	List(ctx context.Context, filter entities.SaleFilter) ([]entities.Sale, error)
}
