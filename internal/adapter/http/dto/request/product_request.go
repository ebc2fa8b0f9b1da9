package request

import (
	"errors"
	"strings"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingUnitPrice = errors.New("unit_price is required")
)

type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Barcode     string           `json:"barcode"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	UnitPrice   *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"25.00"`
	Quantity    int              `json:"quantity"`
}

func (r CreateProductRequest) ToProduct() (entities.Product, error) {
	if r.UnitPrice == nil {
		return entities.Product{}, ErrMissingUnitPrice
	}
	return entities.Product{
		Name:        r.Name,
		Barcode:     strings.TrimSpace(r.Barcode),
		Description: strings.TrimSpace(r.Description),
		Category:    strings.TrimSpace(r.Category),
		UnitPrice:   *r.UnitPrice,
		Quantity:    r.Quantity,
	}, nil
}

// UpdateProductRequest is a partial update. Quantity is not accepted here; use restock.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Barcode     *string          `json:"barcode"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	UnitPrice   *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"25.00"`
}

func (r UpdateProductRequest) ToDetails() entities.ProductDetails {
	return entities.ProductDetails{
		Name:        r.Name,
		Barcode:     r.Barcode,
		Description: r.Description,
		Category:    r.Category,
		UnitPrice:   r.UnitPrice,
	}
}

type RestockRequest struct {
	Quantity int `json:"quantity" example:"10"`
}

// ListProductsQuery binds the ?search=&ordering= catalog filters.
type ListProductsQuery struct {
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
}

func (q ListProductsQuery) ToFilter() entities.ProductFilter {
	return entities.ProductFilter{
		Search: strings.TrimSpace(q.Search),
		Sort:   strings.ToLower(strings.TrimSpace(q.Ordering)),
	}
}
