package usecase

import (
	"context"
	"strings"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidProductID     = entities.NewValidationError("product_id", "must not be blank")
	ErrInvalidProductName   = entities.NewValidationError("name", "must not be blank")
	ErrInvalidProductPrice  = entities.NewValidationError("unit_price", "must be non-negative with at most 2 decimals")
	ErrInvalidProductStock  = entities.NewValidationError("quantity", "must be between 0 and 2147483647")
	ErrInvalidRestockAmount = entities.NewValidationError("quantity", "must be between 1 and 2147483647")
	ErrInvalidProductSort   = entities.NewValidationError("ordering", "must be one of name, unit_price, quantity, category, optionally prefixed with -")
	ErrEmptyProductDetails  = entities.NewValidationError("details", "at least one field must be provided")
)

//go:generate mockgen -source=product_usecase.go -destination=../adapter/http/handlers/mocks/mock_product_usecase.go -package=mocks

// IProductUseCase exposes catalog maintenance. Stock changes only through Restock.
type IProductUseCase interface {
	Create(ctx context.Context, principal entities.Principal, p entities.Product) (entities.Product, error)
	GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Product, error)
	List(ctx context.Context, principal entities.Principal, filter entities.ProductFilter) ([]entities.Product, error)
	UpdateDetails(ctx context.Context, principal entities.Principal, id string, d entities.ProductDetails) (entities.Product, error)
	Restock(ctx context.Context, principal entities.Principal, id string, quantity int) (entities.Product, error)
}

type ProductUseCase struct {
	repo      interfaces.IProductRepository
	uow       interfaces.IUnitOfWork
	policy    interfaces.IAccessPolicy
	ledger    InventoryLedger
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
}

var _ IProductUseCase = (*ProductUseCase)(nil)

func NewProductUseCase(repo interfaces.IProductRepository, uow interfaces.IUnitOfWork, policy interfaces.IAccessPolicy, logger *zap.Logger, txTimeout time.Duration) *ProductUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if txTimeout <= 0 {
		txTimeout = defaultTxTimeout
	}
	return &ProductUseCase{
		repo:      repo,
		uow:       uow,
		policy:    policy,
		logger:    logger,
		txTimeout: txTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *ProductUseCase) Create(ctx context.Context, principal entities.Principal, p entities.Product) (entities.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		return entities.Product{}, ErrInvalidProductName
	}
	if !entities.ValidMoney(p.UnitPrice) {
		return entities.Product{}, ErrInvalidProductPrice
	}
	if p.Quantity < 0 || p.Quantity > entities.MaxStockQuantity {
		return entities.Product{}, ErrInvalidProductStock
	}
	if !u.policy.CanPerform(principal, entities.ActionProductWrite, "") {
		return entities.Product{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionProductWrite}
	}

	now := u.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := u.repo.Create(ctx, p)
	if err != nil {
		u.logger.Warn("[product][usecase] create failed", zap.String("name", p.Name), zap.Error(err))
		return entities.Product{}, wrapPersistence("create product", err)
	}
	u.logger.Info("[product][usecase] created", zap.String("product_id", created.ID), zap.Int("quantity", created.Quantity))
	return created, nil
}

func (u *ProductUseCase) GetByID(ctx context.Context, principal entities.Principal, id string) (entities.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Product{}, ErrInvalidProductID
	}
	if !u.policy.CanPerform(principal, entities.ActionProductRead, "") {
		return entities.Product{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionProductRead}
	}

	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Product{}, wrapPersistence("get product", err)
	}
	if p.ID == "" {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return p, nil
}

func (u *ProductUseCase) List(ctx context.Context, principal entities.Principal, filter entities.ProductFilter) ([]entities.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Sort = strings.TrimSpace(filter.Sort)
	if !entities.ValidProductSort(filter.Sort) {
		return nil, ErrInvalidProductSort
	}
	if !u.policy.CanPerform(principal, entities.ActionProductRead, "") {
		return nil, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionProductRead}
	}
	products, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, wrapPersistence("list products", err)
	}
	return products, nil
}

func (u *ProductUseCase) UpdateDetails(ctx context.Context, principal entities.Principal, id string, d entities.ProductDetails) (entities.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Product{}, ErrInvalidProductID
	}
	if d.IsEmpty() {
		return entities.Product{}, ErrEmptyProductDetails
	}
	if d.Name != nil {
		name := strings.TrimSpace(*d.Name)
		if name == "" {
			return entities.Product{}, ErrInvalidProductName
		}
		d.Name = &name
	}
	if d.UnitPrice != nil && !entities.ValidMoney(*d.UnitPrice) {
		return entities.Product{}, ErrInvalidProductPrice
	}
	if !u.policy.CanPerform(principal, entities.ActionProductWrite, "") {
		return entities.Product{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionProductWrite}
	}

	updated, err := u.repo.UpdateDetails(ctx, id, d, u.now())
	if err != nil {
		return entities.Product{}, wrapPersistence("update product", err)
	}
	if updated.ID == "" {
		return entities.Product{}, entities.ErrProductNotFound
	}
	u.logger.Info("[product][usecase] details updated", zap.String("product_id", id))
	return updated, nil
}

// Restock provisions new units through the ledger so restocks and sales serialize on the
// same compare-and-set.
func (u *ProductUseCase) Restock(ctx context.Context, principal entities.Principal, id string, quantity int) (entities.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Product{}, ErrInvalidProductID
	}
	if quantity < 1 || quantity > entities.MaxStockQuantity {
		return entities.Product{}, ErrInvalidRestockAmount
	}
	if !u.policy.CanPerform(principal, entities.ActionProductWrite, "") {
		return entities.Product{}, &entities.PermissionDeniedError{PrincipalID: principal.ID, Action: entities.ActionProductWrite}
	}

	txCtx, cancel := context.WithTimeout(ctx, u.txTimeout)
	defer cancel()

	var restocked entities.Product
	err := u.uow.WithinTx(txCtx, func(ctx context.Context, tx interfaces.ITx) error {
		next, err := u.ledger.Release(ctx, tx, id, quantity)
		if err != nil {
			return err
		}
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		p.Quantity = next
		restocked = p
		return nil
	})
	if err != nil {
		err = wrapPersistence("restock product", err)
		u.logger.Warn("[product][usecase] restock failed", zap.String("product_id", id), zap.Error(err))
		return entities.Product{}, err
	}
	u.logger.Info("[product][usecase] restocked", zap.String("product_id", id), zap.Int("added", quantity), zap.Int("quantity", restocked.Quantity))
	return restocked, nil
}
