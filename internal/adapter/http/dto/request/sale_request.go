package request

import (
	"strings"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/shopspring/decimal"
)

type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// UnitPrice overrides the catalog price. Optional.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty" swaggertype:"string" example:"25.00"`
}

type CreateSaleRequest struct {
	ClientID         string            `json:"client_id"`
	PaymentMethod    string            `json:"payment_method" example:"CASH"`
	PaymentStatus    string            `json:"payment_status" example:"PAID"`
	PaymentReference string            `json:"payment_reference"`
	Items            []SaleItemRequest `json:"items"`
}

// ToCommand builds the create command. The idempotency key comes from the Idempotency-Key header.
func (r CreateSaleRequest) ToCommand(idempotencyKey string) entities.CreateSaleCommand {
	lines := make([]entities.SaleLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, entities.SaleLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return entities.CreateSaleCommand{
		ClientID:         r.ClientID,
		PaymentMethod:    entities.PaymentMethod(r.PaymentMethod),
		PaymentStatus:    entities.PaymentStatus(r.PaymentStatus),
		PaymentReference: r.PaymentReference,
		IdempotencyKey:   strings.TrimSpace(idempotencyKey),
		Items:            lines,
	}
}

type CancelSaleRequest struct {
	Note string `json:"note"`
}

// ListSalesQuery binds the ?seller_id=&status= filters.
type ListSalesQuery struct {
	SellerID string `form:"seller_id"`
	Status   string `form:"status"`
}

func (q ListSalesQuery) ToFilter() entities.SaleFilter {
	return entities.SaleFilter{
		SellerID: strings.TrimSpace(q.SellerID),
		Status:   entities.SaleStatus(strings.ToUpper(strings.TrimSpace(q.Status))),
	}
}
