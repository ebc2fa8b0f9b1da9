package payments

import (
	"context"
	"errors"
	"testing"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/mercadopago/sdk-go/pkg/refund"
	"github.com/shopspring/decimal"
)

type fakeRefunds struct {
	calls []int
	err   error
}

func (f *fakeRefunds) Create(_ context.Context, paymentID int) (*refund.Response, error) {
	f.calls = append(f.calls, paymentID)
	if f.err != nil {
		return nil, f.err
	}
	return &refund.Response{ID: 1, Status: "approved"}, nil
}

func cardSale(ref string) entities.Sale {
	return entities.Sale{ID: "s1", PaymentMethod: entities.PaymentMethodCreditCard, PaymentReference: ref, Total: decimal.RequireFromString("75.00")}
}

func TestNewMercadoPagoGateway(t *testing.T) {
	if _, err := NewMercadoPagoGateway("", false, nil); !errors.Is(err, ErrMissingMercadoPagoAccessToken) {
		t.Fatalf("expected ErrMissingMercadoPagoAccessToken, got %v", err)
	}
	g, err := NewMercadoPagoGateway("", true, nil)
	if err != nil || !g.mockMode {
		t.Fatalf("expected mock gateway, got %+v err=%v", g, err)
	}
	if err := g.NotifyCancellation(context.Background(), cardSale("123")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestMercadoPagoGateway_NotifyCancellation(t *testing.T) {
	t.Run("cash sale is skipped", func(t *testing.T) {
		f := &fakeRefunds{}
		g := &MercadoPagoGateway{client: f}
		s := cardSale("123")
		s.PaymentMethod = entities.PaymentMethodCash
		if err := g.NotifyCancellation(context.Background(), s); err != nil || len(f.calls) != 0 {
			t.Fatalf("expected no refund, got calls=%v err=%v", f.calls, err)
		}
	})

	t.Run("missing reference is skipped", func(t *testing.T) {
		f := &fakeRefunds{}
		g := &MercadoPagoGateway{client: f}
		if err := g.NotifyCancellation(context.Background(), cardSale("")); err != nil || len(f.calls) != 0 {
			t.Fatalf("expected no refund, got calls=%v err=%v", f.calls, err)
		}
	})

	t.Run("invalid reference", func(t *testing.T) {
		g, _ := NewMercadoPagoGateway("", true, nil)
		if err := g.NotifyCancellation(context.Background(), cardSale("abc")); err == nil {
			t.Fatalf("expected error for non numeric reference")
		}
	})

	t.Run("refunds the payment", func(t *testing.T) {
		f := &fakeRefunds{}
		g, _ := NewMercadoPagoGateway("", true, nil)
		g.mockMode, g.client = false, f
		if err := g.NotifyCancellation(context.Background(), cardSale("98765")); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(f.calls) != 1 || f.calls[0] != 98765 {
			t.Fatalf("expected refund of 98765, got %v", f.calls)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		f := &fakeRefunds{err: errors.New("timeout")}
		g, _ := NewMercadoPagoGateway("", true, nil)
		g.mockMode, g.client = false, f
		if err := g.NotifyCancellation(context.Background(), cardSale("1")); err == nil || err.Error() != "timeout" {
			t.Fatalf("expected provider error, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		g, _ := NewMercadoPagoGateway("", true, nil)
		g.mockMode = false
		if err := g.NotifyCancellation(context.Background(), cardSale("1")); !errors.Is(err, ErrMercadoPagoGatewayNotConfigured) {
			t.Fatalf("expected ErrMercadoPagoGatewayNotConfigured, got %v", err)
		}
	})
}
