package response

import (
	"testing"
	"time"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func TestFromProduct(t *testing.T) {
	r := FromProduct(entities.Product{ID: "p1", Name: "Catan", UnitPrice: decimal.RequireFromString("25"), Quantity: 7})
	if r.UnitPrice != "25.00" || r.Quantity != 7 || r.ID != "p1" {
		t.Fatalf("unexpected response %+v", r)
	}
	if got := FromProducts(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestFromClient(t *testing.T) {
	r := FromClient(entities.Client{ID: "c1", Name: "Ana", CPF: "12345678909"})
	if r.ID != "c1" || r.CPF != "12345678909" {
		t.Fatalf("unexpected response %+v", r)
	}
	if got := FromClients(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestFromSale(t *testing.T) {
	at := time.Now().UTC()
	s := entities.Sale{
		ID:            "s1",
		SellerID:      "att-1",
		PaymentMethod: entities.PaymentMethodCash,
		PaymentStatus: entities.PaymentStatusRefunded,
		Status:        entities.SaleStatusCancelled,
		Total:         decimal.RequireFromString("0.5"),
		Items: []entities.SaleItem{
			{ID: "i1", ProductID: "p1", Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")},
			{ID: "i2", ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("0.20")},
		},
		CancelledAt: &at,
		Version:     2,
	}
	r := FromSale(s)
	if r.Total != "0.50" || r.Status != "CANCELLED" || r.PaymentStatus != "REFUNDED" {
		t.Fatalf("unexpected response %+v", r)
	}
	if len(r.Items) != 2 || r.Items[0].Subtotal != "0.30" || r.Items[1].UnitPrice != "0.20" {
		t.Fatalf("unexpected items %+v", r.Items)
	}
	if r.CancelledAt == nil || !r.CancelledAt.Equal(at) {
		t.Fatalf("expected cancelled_at")
	}
	if len(FromSales([]entities.Sale{s, s})) != 2 {
		t.Fatalf("expected two sales")
	}
}
