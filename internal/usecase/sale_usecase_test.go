package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"
	mock_interfaces "geekgalaxy_pos/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

var (
	attendant  = entities.Principal{ID: "att-1", Roles: []entities.Role{entities.RoleAttendant}}
	supervisor = entities.Principal{ID: "sup-1", Roles: []entities.Role{entities.RoleSupervisor}}
)

type saleFixture struct {
	uow      *mock_interfaces.MockIUnitOfWork
	tx       *mock_interfaces.MockITx
	sales    *mock_interfaces.MockISaleRepository
	policy   *mock_interfaces.MockIAccessPolicy
	notifier *mock_interfaces.MockIFinancialNotifier
	idem     *mock_interfaces.MockIIdempotencyStore
	uc       *SaleUseCase
}

func newSaleFixture(ctrl *gomock.Controller) *saleFixture {
	f := &saleFixture{
		uow:      mock_interfaces.NewMockIUnitOfWork(ctrl),
		tx:       mock_interfaces.NewMockITx(ctrl),
		sales:    mock_interfaces.NewMockISaleRepository(ctrl),
		policy:   mock_interfaces.NewMockIAccessPolicy(ctrl),
		notifier: mock_interfaces.NewMockIFinancialNotifier(ctrl),
		idem:     mock_interfaces.NewMockIIdempotencyStore(ctrl),
	}
	f.uc = NewSaleUseCase(SaleUseCaseDeps{
		UnitOfWork:  f.uow,
		Sales:       f.sales,
		Policy:      f.policy,
		Notifier:    f.notifier,
		Idempotency: f.idem,
		TxTimeout:   time.Second,
	})
	n := 0
	f.uc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return f
}

func (f *saleFixture) runTx() {
	f.uow.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, interfaces.ITx) error) error {
			return fn(ctx, f.tx)
		},
	)
}

func (f *saleFixture) allow(p entities.Principal, actions ...entities.Action) {
	for _, a := range actions {
		f.policy.EXPECT().CanPerform(p, a, gomock.Any()).Return(true).AnyTimes()
	}
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func TestSaleUseCase_CreateSale_Validation(t *testing.T) {
	cases := map[string]entities.CreateSaleCommand{
		"no items":              {PaymentMethod: entities.PaymentMethodCash},
		"bad method":            {PaymentMethod: "BARTER", Items: []entities.SaleLine{{ProductID: "p1", Quantity: 1}}},
		"bad status":            {PaymentMethod: entities.PaymentMethodPix, PaymentStatus: entities.PaymentStatusRefunded, Items: []entities.SaleLine{{ProductID: "p1", Quantity: 1}}},
		"zero quantity":         {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{{ProductID: "p1", Quantity: 0}}},
		"blank product":         {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{{ProductID: "  ", Quantity: 1}}},
		"negative price":        {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{{ProductID: "p1", Quantity: 1, UnitPrice: pricePtr("-1")}}},
		"three decimals":        {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{{ProductID: "p1", Quantity: 1, UnitPrice: pricePtr("1.005")}}},
		"quantity past ceiling": {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{{ProductID: "p1", Quantity: entities.MaxStockQuantity + 1}}},
		"summed quantity wraps": {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{
			{ProductID: "p1", Quantity: math.MaxInt},
			{ProductID: "p1", Quantity: math.MaxInt},
			{ProductID: "p1", Quantity: 3},
		}},
		"summed quantity past ceiling": {PaymentMethod: entities.PaymentMethodCash, Items: []entities.SaleLine{
			{ProductID: "p1", Quantity: entities.MaxStockQuantity},
			{ProductID: "p1", Quantity: 1},
		}},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newSaleFixture(ctrl)

			_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
			if !errors.Is(err, entities.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSaleUseCase_CreateSale_DistinctProductLimit(t *testing.T) {
	lines := func(n int) []entities.SaleLine {
		out := make([]entities.SaleLine, n)
		for i := range out {
			out[i] = entities.SaleLine{ProductID: fmt.Sprintf("p%03d", i), Quantity: 1}
		}
		return out
	}

	t.Run("one past the limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)

		_, err := f.uc.CreateSale(context.Background(), attendant, entities.CreateSaleCommand{
			PaymentMethod: entities.PaymentMethodCash,
			Items:         lines(entities.MaxDistinctProductsPerSale + 1),
		})
		var ve *entities.ValidationError
		if !errors.As(err, &ve) || ve.Field != "items" {
			t.Fatalf("expected ValidationError on items, got %v", err)
		}
	})

	t.Run("repeated lines of one product do not count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleCreate, "").Return(false)

		items := lines(entities.MaxDistinctProductsPerSale)
		items = append(items, items[0], items[1])
		_, err := f.uc.CreateSale(context.Background(), attendant, entities.CreateSaleCommand{
			PaymentMethod: entities.PaymentMethodCash,
			Items:         items,
		})
		if !errors.Is(err, entities.ErrPermissionDenied) {
			t.Fatalf("expected validation to pass and the policy to deny, got %v", err)
		}
	})
}

func TestSaleUseCase_CreateSale(t *testing.T) {
	cmd := entities.CreateSaleCommand{
		PaymentMethod: entities.PaymentMethodCash,
		Items: []entities.SaleLine{
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 2},
		},
	}
	p1 := entities.Product{ID: "p1", Name: "Catan", UnitPrice: price("25.00"), Quantity: 10}
	p2 := entities.Product{ID: "p2", Name: "Sleeves", UnitPrice: price("0.10"), Quantity: 3}

	t.Run("permission denied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleCreate, "").Return(false)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		var pd *entities.PermissionDeniedError
		if !errors.As(err, &pd) || pd.Action != entities.ActionSaleCreate {
			t.Fatalf("expected PermissionDeniedError for sale:create, got %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{}, nil)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("insufficient stock leaves no sale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(p1, nil).Times(2)
		short := p2
		short.Quantity = 2
		f.tx.EXPECT().GetProduct(gomock.Any(), "p2").Return(short, nil).Times(2)
		f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 10, 8).Return(nil)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		var ise *entities.InsufficientStockError
		if !errors.As(err, &ise) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if ise.ProductID != "p2" || ise.Available != 2 || ise.Requested != 3 {
			t.Fatalf("unexpected error detail: %+v", ise)
		}
	})

	t.Run("success reserves in product order and snapshots prices", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(p1, nil).Times(2)
		f.tx.EXPECT().GetProduct(gomock.Any(), "p2").Return(p2, nil).Times(2)
		gomock.InOrder(
			f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 10, 8).Return(nil),
			f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p2", 3, 0).Return(nil),
		)
		f.tx.EXPECT().InsertSale(gomock.Any(), gomock.AssignableToTypeOf(entities.Sale{})).DoAndReturn(
			func(_ context.Context, s entities.Sale) error {
				if s.Status != entities.SaleStatusCompleted || s.SellerID != attendant.ID || s.PaymentStatus != entities.PaymentStatusPaid {
					t.Fatalf("unexpected sale header: %+v", s)
				}
				if len(s.Items) != 3 || s.Items[0].ProductID != "p2" || s.Items[1].ProductID != "p1" {
					t.Fatalf("items must keep command order: %+v", s.Items)
				}
				if s.Version != 1 || s.CreatedAt.IsZero() {
					t.Fatalf("expected version 1 and creation timestamp")
				}
				return nil
			},
		)

		sale, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !sale.Total.Equal(price("50.30")) {
			t.Fatalf("expected total 50.30, got %s", sale.Total)
		}
	})

	t.Run("price override needs capability", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleCreate, "").Return(true)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleOverridePrice, "").Return(false)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(p1, nil)

		override := entities.CreateSaleCommand{
			PaymentMethod: entities.PaymentMethodCash,
			Items:         []entities.SaleLine{{ProductID: "p1", Quantity: 1, UnitPrice: pricePtr("20.00")}},
		}
		_, err := f.uc.CreateSale(context.Background(), attendant, override)
		if !errors.Is(err, entities.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("override equal to catalog price is accepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleCreate, "").Return(true)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleOverridePrice, "").Return(false)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(p1, nil).Times(2)
		f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 10, 9).Return(nil)
		f.tx.EXPECT().InsertSale(gomock.Any(), gomock.Any()).Return(nil)

		same := entities.CreateSaleCommand{
			PaymentMethod: entities.PaymentMethodCash,
			Items:         []entities.SaleLine{{ProductID: "p1", Quantity: 1, UnitPrice: pricePtr("25")}},
		}
		sale, err := f.uc.CreateSale(context.Background(), attendant, same)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !sale.Total.Equal(price("25.00")) {
			t.Fatalf("expected total 25.00, got %s", sale.Total)
		}
	})

	t.Run("unknown client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.runTx()
		f.tx.EXPECT().GetClient(gomock.Any(), "c9").Return(entities.Client{}, nil)

		withClient := cmd
		withClient.ClientID = " c9 "
		_, err := f.uc.CreateSale(context.Background(), attendant, withClient)
		var ve *entities.ValidationError
		if !errors.As(err, &ve) || ve.Field != "client_id" {
			t.Fatalf("expected ValidationError on client_id, got %v", err)
		}
	})

	t.Run("client is resolved inside the transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.runTx()
		gomock.InOrder(
			f.tx.EXPECT().GetClient(gomock.Any(), "c1").Return(entities.Client{ID: "c1", Name: "Ana"}, nil),
			f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(p1, nil).Times(2),
		)
		f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 10, 9).Return(nil)
		f.tx.EXPECT().InsertSale(gomock.Any(), gomock.Any()).Return(nil)

		sale, err := f.uc.CreateSale(context.Background(), attendant, entities.CreateSaleCommand{
			ClientID:      "c1",
			PaymentMethod: entities.PaymentMethodCash,
			Items:         []entities.SaleLine{{ProductID: "p1", Quantity: 1}},
		})
		if err != nil || sale.ClientID != "c1" {
			t.Fatalf("expected sale for client c1, got %+v err=%v", sale, err)
		}
	})

	t.Run("transaction deadline is a persistence error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.uc.txTimeout = 20 * time.Millisecond
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.uow.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ func(context.Context, interfaces.ITx) error) error {
				<-ctx.Done()
				return ctx.Err()
			},
		)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if !errors.Is(err, entities.ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected the deadline to stay in the chain, got %v", err)
		}
	})

	t.Run("store failure is a persistence error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.uow.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		var pe *entities.PersistenceError
		if !errors.As(err, &pe) || pe.Op != "create sale" {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
	})
}

func TestSaleUseCase_CreateSale_Idempotency(t *testing.T) {
	cmd := entities.CreateSaleCommand{
		PaymentMethod:  entities.PaymentMethodPix,
		IdempotencyKey: "req-1",
		Items:          []entities.SaleLine{{ProductID: "p1", Quantity: 1}},
	}

	t.Run("replay returns the stored sale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.idem.EXPECT().Claim(gomock.Any(), "att-1:req-1").Return("sale-9", false, nil)
		f.sales.EXPECT().GetByID(gomock.Any(), "sale-9").Return(entities.Sale{ID: "sale-9"}, nil)

		sale, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if err != nil || sale.ID != "sale-9" {
			t.Fatalf("expected replayed sale-9, got %+v err=%v", sale, err)
		}
	})

	t.Run("in flight", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.idem.EXPECT().Claim(gomock.Any(), "att-1:req-1").Return("", false, entities.ErrIdempotencyInFlight)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if !errors.Is(err, entities.ErrIdempotencyInFlight) {
			t.Fatalf("expected ErrIdempotencyInFlight, got %v", err)
		}
	})

	t.Run("claimed key is completed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.idem.EXPECT().Claim(gomock.Any(), "att-1:req-1").Return("", true, nil)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", UnitPrice: price("5"), Quantity: 1}, nil).Times(2)
		f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 1, 0).Return(nil)
		f.tx.EXPECT().InsertSale(gomock.Any(), gomock.Any()).Return(nil)
		f.idem.EXPECT().Complete(gomock.Any(), "att-1:req-1", gomock.Any()).Return(nil)

		sale, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if sale.IdempotencyKey != "req-1" {
			t.Fatalf("expected idempotency key on sale, got %q", sale.IdempotencyKey)
		}
	})

	t.Run("claimed key is released on failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleCreate, entities.ActionSaleOverridePrice)
		f.idem.EXPECT().Claim(gomock.Any(), "att-1:req-1").Return("", true, nil)
		f.runTx()
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", UnitPrice: price("5"), Quantity: 0}, nil).Times(2)
		f.idem.EXPECT().Release(gomock.Any(), "att-1:req-1").Return(nil)

		_, err := f.uc.CreateSale(context.Background(), attendant, cmd)
		if !errors.Is(err, entities.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
	})
}

func completedSale() entities.Sale {
	return entities.Sale{
		ID:            "s1",
		SellerID:      attendant.ID,
		Status:        entities.SaleStatusCompleted,
		PaymentMethod: entities.PaymentMethodCreditCard,
		PaymentStatus: entities.PaymentStatusPaid,
		Version:       1,
		Items: []entities.SaleItem{
			{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: price("50.00")},
			{ID: "i2", ProductID: "p2", Quantity: 1, UnitPrice: price("30.00")},
		},
		Total: price("80.00"),
	}
}

func TestSaleUseCase_CancelSale(t *testing.T) {
	t.Run("blank id", func(t *testing.T) {
		uc := NewSaleUseCase(SaleUseCaseDeps{})
		_, err := uc.CancelSale(context.Background(), supervisor, "  ", "")
		if !errors.Is(err, ErrInvalidSaleID) {
			t.Fatalf("expected ErrInvalidSaleID, got %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(entities.Sale{}, nil)

		_, err := f.uc.CancelSale(context.Background(), supervisor, "s1", "")
		if !errors.Is(err, entities.ErrSaleNotFound) {
			t.Fatalf("expected ErrSaleNotFound, got %v", err)
		}
	})

	t.Run("attendant is denied inside the transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(completedSale(), nil)
		other := entities.Principal{ID: "att-2", Roles: []entities.Role{entities.RoleAttendant}}
		f.policy.EXPECT().CanPerform(other, entities.ActionSaleCancel, attendant.ID).Return(false)

		_, err := f.uc.CancelSale(context.Background(), other, "s1", "")
		if !errors.Is(err, entities.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleCancel)
		f.runTx()
		s := completedSale()
		s.Status = entities.SaleStatusCancelled
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(s, nil)

		_, err := f.uc.CancelSale(context.Background(), supervisor, "s1", "")
		var te *entities.InvalidTransitionError
		if !errors.As(err, &te) || te.From != entities.SaleStatusCancelled {
			t.Fatalf("expected InvalidTransitionError from CANCELLED, got %v", err)
		}
	})

	t.Run("success releases stock and notifies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleCancel)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(completedSale(), nil)
		f.tx.EXPECT().GetProduct(gomock.Any(), "p1").Return(entities.Product{ID: "p1", Quantity: 4}, nil)
		f.tx.EXPECT().GetProduct(gomock.Any(), "p2").Return(entities.Product{ID: "p2", Quantity: 0}, nil)
		gomock.InOrder(
			f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p1", 4, 5).Return(nil),
			f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p2", 0, 1).Return(nil),
		)
		f.tx.EXPECT().UpdateSale(gomock.Any(), gomock.Any(), int64(1)).DoAndReturn(
			func(_ context.Context, s entities.Sale, _ int64) error {
				if s.Status != entities.SaleStatusCancelled || s.PaymentStatus != entities.PaymentStatusRefunded {
					t.Fatalf("unexpected statuses: %s/%s", s.Status, s.PaymentStatus)
				}
				if s.CancelledBy != supervisor.ID || s.CancelNote != "customer returned" || s.CancelledAt == nil || s.Version != 2 {
					t.Fatalf("unexpected audit fields: %+v", s)
				}
				return nil
			},
		)
		notified := make(chan string, 1)
		f.notifier.EXPECT().NotifyCancellation(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, s entities.Sale) error {
				if _, ok := ctx.Deadline(); !ok {
					t.Errorf("expected bounded notification context")
				}
				notified <- s.ID
				return errors.New("broker down")
			},
		)

		sale, err := f.uc.CancelSale(context.Background(), supervisor, " s1 ", " customer returned ")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		f.uc.Wait()
		if got := <-notified; got != "s1" {
			t.Fatalf("expected notification for s1, got %s", got)
		}
		if sale.Status != entities.SaleStatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", sale.Status)
		}
	})

	t.Run("concurrent update is retryable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.uow.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(entities.ErrConcurrentUpdate)

		_, err := f.uc.CancelSale(context.Background(), supervisor, "s1", "")
		if !errors.Is(err, entities.ErrPersistence) || !errors.Is(err, entities.ErrConcurrentUpdate) {
			t.Fatalf("expected persistence error wrapping ErrConcurrentUpdate, got %v", err)
		}
	})
}

func TestSaleUseCase_RemoveSaleItem(t *testing.T) {
	t.Run("blank item id", func(t *testing.T) {
		uc := NewSaleUseCase(SaleUseCaseDeps{})
		_, err := uc.RemoveSaleItem(context.Background(), supervisor, "s1", " ")
		if !errors.Is(err, ErrInvalidSaleItemID) {
			t.Fatalf("expected ErrInvalidSaleItemID, got %v", err)
		}
	})

	t.Run("attendant is denied", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(completedSale(), nil)
		f.policy.EXPECT().CanPerform(attendant, entities.ActionSaleRemoveItem, attendant.ID).Return(false)

		_, err := f.uc.RemoveSaleItem(context.Background(), attendant, "s1", "i1")
		if !errors.Is(err, entities.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("cancelled sale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleRemoveItem)
		f.runTx()
		s := completedSale()
		s.Status = entities.SaleStatusCancelled
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(s, nil)

		_, err := f.uc.RemoveSaleItem(context.Background(), supervisor, "s1", "i1")
		if !errors.Is(err, entities.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("item not in sale", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleRemoveItem)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(completedSale(), nil)

		_, err := f.uc.RemoveSaleItem(context.Background(), supervisor, "s1", "i9")
		if !errors.Is(err, entities.ErrSaleItemNotFound) {
			t.Fatalf("expected ErrSaleItemNotFound, got %v", err)
		}
	})

	t.Run("last item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleRemoveItem)
		f.runTx()
		s := completedSale()
		s.Items = s.Items[:1]
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(s, nil)

		_, err := f.uc.RemoveSaleItem(context.Background(), supervisor, "s1", "i1")
		if !errors.Is(err, ErrLastSaleItem) {
			t.Fatalf("expected ErrLastSaleItem, got %v", err)
		}
	})

	t.Run("success recomputes total", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(supervisor, entities.ActionSaleRemoveItem)
		f.runTx()
		f.tx.EXPECT().GetSale(gomock.Any(), "s1").Return(completedSale(), nil)
		f.tx.EXPECT().GetProduct(gomock.Any(), "p2").Return(entities.Product{ID: "p2", Quantity: 7}, nil)
		f.tx.EXPECT().SetProductQuantity(gomock.Any(), "p2", 7, 8).Return(nil)
		f.tx.EXPECT().UpdateSale(gomock.Any(), gomock.Any(), int64(1)).Return(nil)

		sale, err := f.uc.RemoveSaleItem(context.Background(), supervisor, "s1", "i2")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(sale.Items) != 1 || sale.Items[0].ID != "i1" {
			t.Fatalf("unexpected items: %+v", sale.Items)
		}
		if !sale.Total.Equal(price("50.00")) || sale.Status != entities.SaleStatusCompleted || sale.Version != 2 {
			t.Fatalf("unexpected sale: total=%s status=%s version=%d", sale.Total, sale.Status, sale.Version)
		}
	})
}

func TestSaleUseCase_Reads(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleRead)
		f.sales.EXPECT().GetByID(gomock.Any(), "s1").Return(entities.Sale{}, nil)

		_, err := f.uc.GetByID(context.Background(), attendant, "s1")
		if !errors.Is(err, entities.ErrSaleNotFound) {
			t.Fatalf("expected ErrSaleNotFound, got %v", err)
		}
	})

	t.Run("list with invalid status", func(t *testing.T) {
		uc := NewSaleUseCase(SaleUseCaseDeps{})
		_, err := uc.List(context.Background(), attendant, entities.SaleFilter{Status: "LOST"})
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("list passes filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := newSaleFixture(ctrl)
		f.allow(attendant, entities.ActionSaleRead)
		f.sales.EXPECT().List(gomock.Any(), entities.SaleFilter{SellerID: "att-1", Status: entities.SaleStatusCompleted}).
			Return([]entities.Sale{{ID: "s1"}}, nil)

		out, err := f.uc.List(context.Background(), attendant, entities.SaleFilter{SellerID: " att-1 ", Status: entities.SaleStatusCompleted})
		if err != nil || len(out) != 1 {
			t.Fatalf("expected one sale, got %v err=%v", out, err)
		}
	})
}
