package request

import (
	"encoding/json"
	"errors"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
)

func TestCreateProductRequest_ToProduct(t *testing.T) {
	var r CreateProductRequest
	if err := json.Unmarshal([]byte(`{"name":"Catan","unit_price":"25.50","quantity":3,"category":" board "}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := r.ToProduct()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UnitPrice.StringFixed(2) != "25.50" || p.Quantity != 3 || p.Category != "board" {
		t.Fatalf("unexpected product %+v", p)
	}

	_, err = CreateProductRequest{Name: "x"}.ToProduct()
	if !errors.Is(err, ErrMissingUnitPrice) {
		t.Fatalf("expected ErrMissingUnitPrice, got %v", err)
	}
}

func TestUpdateProductRequest_ToDetails(t *testing.T) {
	var r UpdateProductRequest
	if err := json.Unmarshal([]byte(`{"unit_price":19.9}`), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := r.ToDetails()
	if d.Name != nil || d.UnitPrice == nil || d.UnitPrice.StringFixed(2) != "19.90" {
		t.Fatalf("unexpected details %+v", d)
	}
	if !(UpdateProductRequest{}).ToDetails().IsEmpty() {
		t.Fatalf("expected empty details")
	}
}

func TestCreateSaleRequest_ToCommand(t *testing.T) {
	var r CreateSaleRequest
	body := `{"payment_method":"PIX","payment_reference":"123","items":[{"product_id":"p1","quantity":2},{"product_id":"p2","quantity":1,"unit_price":"9.99"}]}`
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmd := r.ToCommand(" key-1 ")
	if cmd.IdempotencyKey != "key-1" || cmd.PaymentMethod != entities.PaymentMethodPix {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if len(cmd.Items) != 2 || cmd.Items[0].UnitPrice != nil || cmd.Items[1].UnitPrice.StringFixed(2) != "9.99" {
		t.Fatalf("unexpected lines %+v", cmd.Items)
	}
}

func TestListSalesQuery_ToFilter(t *testing.T) {
	f := ListSalesQuery{SellerID: " att-1 ", Status: "cancelled"}.ToFilter()
	if f.SellerID != "att-1" || f.Status != entities.SaleStatusCancelled {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestListProductsQuery_ToFilter(t *testing.T) {
	f := ListProductsQuery{Search: " catan ", Ordering: " -Unit_Price "}.ToFilter()
	if f.Search != "catan" || f.Sort != "-unit_price" {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestClientRequests(t *testing.T) {
	c := CreateClientRequest{Name: "Ana", CPF: "123.456.789-09", City: "Recife"}.ToClient()
	if c.Name != "Ana" || c.CPF != "123.456.789-09" || c.City != "Recife" {
		t.Fatalf("unexpected client %+v", c)
	}
	if !(UpdateClientRequest{}).ToDetails().IsEmpty() {
		t.Fatalf("expected empty details")
	}
	if f := (ListClientsQuery{Search: "  souza "}).ToFilter(); f.Search != "souza" {
		t.Fatalf("unexpected filter %+v", f)
	}
}
