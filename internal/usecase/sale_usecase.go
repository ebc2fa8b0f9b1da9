package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultTxTimeout     = 5 * time.Second
	defaultNotifyTimeout = 10 * time.Second
	tracerName           = "geekgalaxy_pos/usecase"
)

var (
	ErrInvalidSaleID     = entities.NewValidationError("sale_id", "must not be blank")
	ErrInvalidSaleItemID = entities.NewValidationError("item_id", "must not be blank")
	ErrEmptySale         = entities.NewValidationError("items", "a sale needs at least one item")
	ErrLastSaleItem      = entities.NewValidationError("item_id", "cannot remove the last item of a sale, cancel the sale instead")
)

//go:generate mockgen -source=sale_usecase.go -destination=../adapter/http/handlers/mocks/mock_sale_usecase.go -package=mocks

// ISaleUseCase exposes the sale transaction engine.
type ISaleUseCase interface {
	CreateSale(ctx context.Context, principal entities.Principal, cmd entities.CreateSaleCommand) (entities.Sale, error)
	CancelSale(ctx context.Context, principal entities.Principal, saleID, note string) (entities.Sale, error)
	RemoveSaleItem(ctx context.Context, principal entities.Principal, saleID, itemID string) (entities.Sale, error)
	GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Sale, error)
	List(ctx context.Context, principal entities.Principal, filter entities.SaleFilter) ([]entities.Sale, error)
}

// SaleUseCaseDeps groups the collaborators of the engine. Notifier, Idempotency, Logger and
// Tracer are optional.
type SaleUseCaseDeps struct {
	UnitOfWork    interfaces.IUnitOfWork
	Sales         interfaces.ISaleRepository
	Policy        interfaces.IAccessPolicy
	Notifier      interfaces.IFinancialNotifier
	Idempotency   interfaces.IIdempotencyStore
	Logger        *zap.Logger
	Tracer        trace.Tracer
	TxTimeout     time.Duration
	NotifyTimeout time.Duration
}

type SaleUseCase struct {
	uow           interfaces.IUnitOfWork
	sales         interfaces.ISaleRepository
	policy        interfaces.IAccessPolicy
	notifier      interfaces.IFinancialNotifier
	idempotency   interfaces.IIdempotencyStore
	ledger        InventoryLedger
	logger        *zap.Logger
	tracer        trace.Tracer
	txTimeout     time.Duration
	notifyTimeout time.Duration

	now   func() time.Time
	newID func() string

	notifications sync.WaitGroup
}

var _ ISaleUseCase = (*SaleUseCase)(nil)

func NewSaleUseCase(deps SaleUseCaseDeps) *SaleUseCase {
	u := &SaleUseCase{
		uow:           deps.UnitOfWork,
		sales:         deps.Sales,
		policy:        deps.Policy,
		notifier:      deps.Notifier,
		idempotency:   deps.Idempotency,
		logger:        deps.Logger,
		tracer:        deps.Tracer,
		txTimeout:     deps.TxTimeout,
		notifyTimeout: deps.NotifyTimeout,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
	if u.logger == nil {
		u.logger = zap.NewNop()
	}
	if u.tracer == nil {
		u.tracer = otel.Tracer(tracerName)
	}
	if u.txTimeout <= 0 {
		u.txTimeout = defaultTxTimeout
	}
	if u.notifyTimeout <= 0 {
		u.notifyTimeout = defaultNotifyTimeout
	}
	return u
}

func (u *SaleUseCase) CreateSale(ctx context.Context, principal entities.Principal, cmd entities.CreateSaleCommand) (sale entities.Sale, err error) {
	ctx, span := u.tracer.Start(ctx, "sale.create", trace.WithAttributes(
		attribute.String("principal.id", principal.ID),
		attribute.Int("sale.lines", len(cmd.Items)),
	))
	defer func() { endSpan(span, err) }()

	u.logger.Info("[sale][usecase] create start",
		zap.String("seller_id", principal.ID),
		zap.Int("lines", len(cmd.Items)),
		zap.String("payment_method", string(cmd.PaymentMethod)),
	)

	cmd, err = normalizeCreateSale(cmd)
	if err != nil {
		u.logger.Info("[sale][usecase] create rejected", zap.String("seller_id", principal.ID), zap.Error(err))
		return entities.Sale{}, err
	}
	if !u.policy.CanPerform(principal, entities.ActionSaleCreate, "") {
		return entities.Sale{}, u.denied(principal, entities.ActionSaleCreate)
	}
	canOverride := u.policy.CanPerform(principal, entities.ActionSaleOverridePrice, "")

	idemKey := ""
	if cmd.IdempotencyKey != "" && u.idempotency != nil {
		idemKey = principal.ID + ":" + cmd.IdempotencyKey
		existingID, claimed, claimErr := u.idempotency.Claim(ctx, idemKey)
		if claimErr != nil {
			return entities.Sale{}, wrapPersistence("idempotency claim", claimErr)
		}
		if !claimed {
			u.logger.Info("[sale][usecase] create replayed",
				zap.String("idempotency_key", cmd.IdempotencyKey),
				zap.String("sale_id", existingID),
			)
			return u.loadSale(ctx, existingID)
		}
		defer func() {
			u.settleIdempotency(idemKey, sale.ID, err)
		}()
	}

	txCtx, cancel := context.WithTimeout(ctx, u.txTimeout)
	defer cancel()

	err = u.uow.WithinTx(txCtx, func(ctx context.Context, tx interfaces.ITx) error {
		created, err := u.buildSale(ctx, tx, principal, cmd, canOverride)
		if err != nil {
			return err
		}
		if err := tx.InsertSale(ctx, created); err != nil {
			return err
		}
		sale = created
		return nil
	})
	if err != nil {
		err = wrapPersistence("create sale", err)
		u.logger.Warn("[sale][usecase] create failed", zap.String("seller_id", principal.ID), zap.Error(err))
		return entities.Sale{}, err
	}

	span.SetAttributes(attribute.String("sale.id", sale.ID), attribute.String("sale.total", sale.Total.StringFixed(2)))
	u.logger.Info("[sale][usecase] create success",
		zap.String("sale_id", sale.ID),
		zap.String("seller_id", sale.SellerID),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return sale, nil
}

// buildSale resolves the client, reserves stock and assembles the sale inside tx. Products are read and reserved in
// sorted id order so concurrent sales lock rows in the same order.
func (u *SaleUseCase) buildSale(ctx context.Context, tx interfaces.ITx, principal entities.Principal, cmd entities.CreateSaleCommand, canOverride bool) (entities.Sale, error) {
	if cmd.ClientID != "" {
		c, err := tx.GetClient(ctx, cmd.ClientID)
		if err != nil {
			return entities.Sale{}, err
		}
		if c.ID == "" {
			return entities.Sale{}, entities.NewValidationError("client_id", "unknown client "+cmd.ClientID)
		}
	}

	requested := make(map[string]int, len(cmd.Items))
	for _, line := range cmd.Items {
		requested[line.ProductID] += line.Quantity
	}
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make(map[string]entities.Product, len(ids))
	for _, id := range ids {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return entities.Sale{}, err
		}
		if p.ID == "" {
			return entities.Sale{}, entities.NewValidationError("items.product_id", "unknown product "+id)
		}
		products[id] = p
	}

	for _, line := range cmd.Items {
		if line.UnitPrice != nil && !line.UnitPrice.Equal(products[line.ProductID].UnitPrice) && !canOverride {
			return entities.Sale{}, u.denied(principal, entities.ActionSaleOverridePrice)
		}
	}

	for _, id := range ids {
		if _, err := u.ledger.Reserve(ctx, tx, id, requested[id]); err != nil {
			return entities.Sale{}, err
		}
	}

	now := u.now()
	sale := entities.Sale{
		ID:               u.newID(),
		ClientID:         cmd.ClientID,
		SellerID:         principal.ID,
		PaymentMethod:    cmd.PaymentMethod,
		PaymentStatus:    cmd.PaymentStatus,
		Status:           entities.SaleStatusCompleted,
		PaymentReference: cmd.PaymentReference,
		IdempotencyKey:   cmd.IdempotencyKey,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
		Items:            make([]entities.SaleItem, 0, len(cmd.Items)),
	}
	for _, line := range cmd.Items {
		p := products[line.ProductID]
		price := p.UnitPrice
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		sale.Items = append(sale.Items, entities.SaleItem{
			ID:          u.newID(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   price,
		})
	}
	sale.Total = sale.ComputeTotal()
	return sale, nil
}

func (u *SaleUseCase) CancelSale(ctx context.Context, principal entities.Principal, saleID, note string) (sale entities.Sale, err error) {
	saleID = strings.TrimSpace(saleID)
	ctx, span := u.tracer.Start(ctx, "sale.cancel", trace.WithAttributes(
		attribute.String("principal.id", principal.ID),
		attribute.String("sale.id", saleID),
	))
	defer func() { endSpan(span, err) }()

	if saleID == "" {
		return entities.Sale{}, ErrInvalidSaleID
	}
	u.logger.Info("[sale][usecase] cancel start", zap.String("sale_id", saleID), zap.String("principal_id", principal.ID))

	txCtx, cancel := context.WithTimeout(ctx, u.txTimeout)
	defer cancel()

	err = u.uow.WithinTx(txCtx, func(ctx context.Context, tx interfaces.ITx) error {
		current, err := u.lockedSale(ctx, tx, principal, saleID, entities.ActionSaleCancel)
		if err != nil {
			return err
		}
		prevVersion := current.Version
		if err := current.TransitionTo(entities.SaleStatusCancelled); err != nil {
			return err
		}

		if err := u.releaseItems(ctx, tx, current.Items); err != nil {
			return err
		}

		now := u.now()
		current.PaymentStatus = entities.PaymentStatusRefunded
		current.CancelledAt = &now
		current.CancelledBy = principal.ID
		current.CancelNote = strings.TrimSpace(note)
		current.UpdatedAt = now
		current.Version = prevVersion + 1
		if err := tx.UpdateSale(ctx, current, prevVersion); err != nil {
			return err
		}
		sale = current
		return nil
	})
	if err != nil {
		err = wrapPersistence("cancel sale", err)
		u.logger.Warn("[sale][usecase] cancel failed", zap.String("sale_id", saleID), zap.Error(err))
		return entities.Sale{}, err
	}

	u.logger.Info("[sale][usecase] cancel success", zap.String("sale_id", sale.ID), zap.String("cancelled_by", principal.ID))
	u.notifyCancellation(ctx, sale)
	return sale, nil
}

func (u *SaleUseCase) RemoveSaleItem(ctx context.Context, principal entities.Principal, saleID, itemID string) (sale entities.Sale, err error) {
	saleID = strings.TrimSpace(saleID)
	itemID = strings.TrimSpace(itemID)
	ctx, span := u.tracer.Start(ctx, "sale.remove_item", trace.WithAttributes(
		attribute.String("principal.id", principal.ID),
		attribute.String("sale.id", saleID),
		attribute.String("sale.item_id", itemID),
	))
	defer func() { endSpan(span, err) }()

	if saleID == "" {
		return entities.Sale{}, ErrInvalidSaleID
	}
	if itemID == "" {
		return entities.Sale{}, ErrInvalidSaleItemID
	}
	u.logger.Info("[sale][usecase] remove-item start",
		zap.String("sale_id", saleID),
		zap.String("item_id", itemID),
		zap.String("principal_id", principal.ID),
	)

	txCtx, cancel := context.WithTimeout(ctx, u.txTimeout)
	defer cancel()

	err = u.uow.WithinTx(txCtx, func(ctx context.Context, tx interfaces.ITx) error {
		current, err := u.lockedSale(ctx, tx, principal, saleID, entities.ActionSaleRemoveItem)
		if err != nil {
			return err
		}
		if current.Status != entities.SaleStatusCompleted {
			return &entities.InvalidTransitionError{SaleID: current.ID, From: current.Status, To: entities.SaleStatusCompleted}
		}
		idx := current.ItemIndex(itemID)
		if idx < 0 {
			return entities.ErrSaleItemNotFound
		}
		if len(current.Items) == 1 {
			return ErrLastSaleItem
		}

		removed := current.Items[idx]
		if _, err := u.ledger.Release(ctx, tx, removed.ProductID, removed.Quantity); err != nil {
			return err
		}

		prevVersion := current.Version
		items := make([]entities.SaleItem, 0, len(current.Items)-1)
		items = append(items, current.Items[:idx]...)
		items = append(items, current.Items[idx+1:]...)
		current.Items = items
		current.Total = current.ComputeTotal()
		current.UpdatedAt = u.now()
		current.Version = prevVersion + 1
		if err := tx.UpdateSale(ctx, current, prevVersion); err != nil {
			return err
		}
		sale = current
		return nil
	})
	if err != nil {
		err = wrapPersistence("remove sale item", err)
		u.logger.Warn("[sale][usecase] remove-item failed", zap.String("sale_id", saleID), zap.String("item_id", itemID), zap.Error(err))
		return entities.Sale{}, err
	}

	u.logger.Info("[sale][usecase] remove-item success",
		zap.String("sale_id", sale.ID),
		zap.String("item_id", itemID),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return sale, nil
}

func (u *SaleUseCase) GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Sale, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Sale{}, ErrInvalidSaleID
	}
	if !u.policy.CanPerform(principal, entities.ActionSaleRead, "") {
		return entities.Sale{}, u.denied(principal, entities.ActionSaleRead)
	}
	return u.loadSale(ctx, id)
}

func (u *SaleUseCase) List(ctx context.Context, principal entities.Principal, filter entities.SaleFilter) ([]entities.Sale, error) {
	filter.SellerID = strings.TrimSpace(filter.SellerID)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, entities.NewValidationError("status", "unknown sale status "+string(filter.Status))
	}
	if !u.policy.CanPerform(principal, entities.ActionSaleRead, "") {
		return nil, u.denied(principal, entities.ActionSaleRead)
	}
	sales, err := u.sales.List(ctx, filter)
	if err != nil {
		return nil, wrapPersistence("list sales", err)
	}
	return sales, nil
}

// Wait blocks until every in-flight cancellation notification has finished.
func (u *SaleUseCase) Wait() {
	u.notifications.Wait()
}

func (u *SaleUseCase) loadSale(ctx context.Context, id string) (entities.Sale, error) {
	s, err := u.sales.GetByID(ctx, id)
	if err != nil {
		return entities.Sale{}, wrapPersistence("get sale", err)
	}
	if s.ID == "" {
		return entities.Sale{}, entities.ErrSaleNotFound
	}
	return s, nil
}

// lockedSale loads the sale through tx and checks action against its seller.
func (u *SaleUseCase) lockedSale(ctx context.Context, tx interfaces.ITx, principal entities.Principal, saleID string, action entities.Action) (entities.Sale, error) {
	current, err := tx.GetSale(ctx, saleID)
	if err != nil {
		return entities.Sale{}, err
	}
	if current.ID == "" {
		return entities.Sale{}, entities.ErrSaleNotFound
	}
	if !u.policy.CanPerform(principal, action, current.SellerID) {
		return entities.Sale{}, u.denied(principal, action)
	}
	return current, nil
}

// releaseItems returns the stock of every item, one release per product in sorted id order.
func (u *SaleUseCase) releaseItems(ctx context.Context, tx interfaces.ITx, items []entities.SaleItem) error {
	perProduct := make(map[string]int, len(items))
	for _, it := range items {
		perProduct[it.ProductID] += it.Quantity
	}
	ids := make([]string, 0, len(perProduct))
	for id := range perProduct {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := u.ledger.Release(ctx, tx, id, perProduct[id]); err != nil {
			return err
		}
	}
	return nil
}

func (u *SaleUseCase) notifyCancellation(ctx context.Context, sale entities.Sale) {
	if u.notifier == nil {
		return
	}
	u.notifications.Add(1)
	go func() {
		defer u.notifications.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.notifyTimeout)
		defer cancel()
		if err := u.notifier.NotifyCancellation(nctx, sale); err != nil {
			u.logger.Warn("[sale][usecase] cancellation notification failed", zap.String("sale_id", sale.ID), zap.Error(err))
			return
		}
		u.logger.Info("[sale][usecase] cancellation notified", zap.String("sale_id", sale.ID))
	}()
}

func (u *SaleUseCase) settleIdempotency(key, saleID string, createErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), u.txTimeout)
	defer cancel()
	if createErr != nil {
		if err := u.idempotency.Release(ctx, key); err != nil {
			u.logger.Warn("[sale][usecase] idempotency release failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	if err := u.idempotency.Complete(ctx, key, saleID); err != nil {
		u.logger.Warn("[sale][usecase] idempotency complete failed", zap.String("key", key), zap.String("sale_id", saleID), zap.Error(err))
	}
}

func (u *SaleUseCase) denied(principal entities.Principal, action entities.Action) error {
	u.logger.Info("[sale][usecase] permission denied", zap.String("principal_id", principal.ID), zap.String("action", string(action)))
	return &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: action}
}

func normalizeCreateSale(cmd entities.CreateSaleCommand) (entities.CreateSaleCommand, error) {
	cmd.ClientID = strings.TrimSpace(cmd.ClientID)
	cmd.PaymentReference = strings.TrimSpace(cmd.PaymentReference)
	cmd.IdempotencyKey = strings.TrimSpace(cmd.IdempotencyKey)
	cmd.PaymentMethod = entities.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(cmd.PaymentMethod))))
	cmd.PaymentStatus = entities.PaymentStatus(strings.ToUpper(strings.TrimSpace(string(cmd.PaymentStatus))))

	if len(cmd.Items) == 0 {
		return cmd, ErrEmptySale
	}
	if !cmd.PaymentMethod.Valid() {
		return cmd, entities.NewValidationError("payment_method", "unknown payment method "+string(cmd.PaymentMethod))
	}
	switch cmd.PaymentStatus {
	case "":
		cmd.PaymentStatus = entities.PaymentStatusPaid
	case entities.PaymentStatusPaid, entities.PaymentStatusPending:
	default:
		return cmd, entities.NewValidationError("payment_status", "must be PAID or PENDING")
	}

	items := make([]entities.SaleLine, len(cmd.Items))
	perProduct := make(map[string]int, len(cmd.Items))
	for i, line := range cmd.Items {
		line.ProductID = strings.TrimSpace(line.ProductID)
		if line.ProductID == "" {
			return cmd, entities.NewValidationError("items.product_id", "must not be blank")
		}
		if line.Quantity < 1 {
			return cmd, entities.NewValidationError("items.quantity", "must be at least 1")
		}
		if line.Quantity > entities.MaxStockQuantity {
			return cmd, entities.NewValidationError("items.quantity", fmt.Sprintf("must be at most %d", entities.MaxStockQuantity))
		}
		// Both terms are at most MaxStockQuantity, so the sum cannot wrap.
		perProduct[line.ProductID] += line.Quantity
		if perProduct[line.ProductID] > entities.MaxStockQuantity {
			return cmd, entities.NewValidationError("items.quantity", fmt.Sprintf("total for product %s must be at most %d", line.ProductID, entities.MaxStockQuantity))
		}
		if len(perProduct) > entities.MaxDistinctProductsPerSale {
			return cmd, entities.NewValidationError("items", fmt.Sprintf("a sale holds at most %d distinct products", entities.MaxDistinctProductsPerSale))
		}
		if line.UnitPrice != nil && !entities.ValidMoney(*line.UnitPrice) {
			return cmd, entities.NewValidationError("items.unit_price", "must be non-negative with at most 2 decimals")
		}
		items[i] = line
	}
	cmd.Items = items
	return cmd, nil
}

// wrapPersistence leaves business outcomes untouched and turns everything else into a
// retryable PersistenceError.
func wrapPersistence(op string, err error) error {
	if err == nil || entities.IsDomainError(err) || errors.Is(err, entities.ErrPersistence) {
		return err
	}
	return &entities.PersistenceError{Op: op, Err: err}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
