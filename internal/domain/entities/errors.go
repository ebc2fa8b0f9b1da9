package entities

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidTransition   = errors.New("invalid sale transition")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPersistence         = errors.New("persistence unavailable")
	ErrConcurrentUpdate    = errors.New("concurrent update")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrSaleItemNotFound    = errors.New("sale item not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductExists       = errors.New("product already exists")
	ErrClientNotFound      = errors.New("client not found")
	ErrClientExists        = errors.New("client already exists")
	ErrIdempotencyInFlight = errors.New("idempotency key in flight")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available=%d requested=%d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InvalidTransitionError struct {
	SaleID string
	From   SaleStatus
	To     SaleStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("sale %s cannot go from %s to %s", e.SaleID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type PermissionDeniedError struct {
	PrincipalID string
	Action      Action
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("principal %q may not perform %s", e.PrincipalID, e.Action)
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

// PersistenceError wraps a storage failure. It is retryable by the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDomainError reports whether err is one of the business outcomes that must not be
// reported as a storage failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrInsufficientStock, ErrInvalidTransition, ErrPermissionDenied,
		ErrSaleNotFound, ErrSaleItemNotFound, ErrProductNotFound, ErrProductExists, ErrClientNotFound, ErrClientExists,
		ErrIdempotencyInFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
