package interfaces

import (
	"context"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
)

//go:generate mockgen -source=product_repository_interface.go -destination=mocks/mock_product_repository_interface.go -package=mock_interfaces

// IProductRepository abstracts catalog persistence outside of a unit of work.
//
// Lookups return a zero Product (empty ID) and a nil error when nothing matches.
// Quantity is never written here; stock moves only through ITx.
type IProductRepository interface {
	Create(ctx context.Context, p entities.Product) (entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
	// List returns the products matching filter, ordered by filter.Sort.
	List(ctx context.Context, filter entities.ProductFilter) ([]entities.Product, error)
	UpdateDetails(ctx context.Context, id string, d entities.ProductDetails, now time.Time) (entities.Product, error)
}
