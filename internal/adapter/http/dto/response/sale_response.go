package response

import (
	"time"

	"geekgalaxy_pos/internal/domain/entities"
)

type SaleItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price" example:"25.00"`
	Subtotal    string `json:"subtotal" example:"75.00"`
}

type SaleResponse struct {
	ID               string             `json:"id"`
	ClientID         string             `json:"client_id,omitempty"`
	SellerID         string             `json:"seller_id"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentStatus    string             `json:"payment_status"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	Status           string             `json:"status"`
	Total            string             `json:"total" example:"75.00"`
	Items            []SaleItemResponse `json:"items"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy      string             `json:"cancelled_by,omitempty"`
	CancelNote       string             `json:"cancel_note,omitempty"`
	Version          int64              `json:"version"`
}

func FromSale(s entities.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Subtotal:    it.Subtotal().StringFixed(2),
		})
	}
	return SaleResponse{
		ID:               s.ID,
		ClientID:         s.ClientID,
		SellerID:         s.SellerID,
		PaymentMethod:    string(s.PaymentMethod),
		PaymentStatus:    string(s.PaymentStatus),
		PaymentReference: s.PaymentReference,
		Status:           string(s.Status),
		Total:            s.Total.StringFixed(2),
		Items:            items,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		CancelledAt:      s.CancelledAt,
		CancelledBy:      s.CancelledBy,
		CancelNote:       s.CancelNote,
		Version:          s.Version,
	}
}

func FromSales(ss []entities.Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(ss))
	for _, s := range ss {
		out = append(out, FromSale(s))
	}
	return out
}
