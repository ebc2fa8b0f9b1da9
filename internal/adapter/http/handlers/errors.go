package handlers

import (
	"errors"
	"net/http"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/pkg"

	"github.com/gin-gonic/gin"
)

const retryAfterSeconds = "1"

var (
	errInvalidPayload = pkg.NewDomainErrorSimple("INVALID_PAYLOAD", "Invalid request payload", http.StatusBadRequest)
)

// mapError turns a usecase error into the response error. Domain errors carry
// their structured fields in details.
func mapError(err error) *pkg.AppError {
	var (
		validation *entities.ValidationError
		stock      *entities.InsufficientStockError
		transition *entities.InvalidTransitionError
		denied     *entities.PermissionDeniedError
	)
	switch {
	case errors.As(err, &validation):
		return pkg.NewDomainError("INVALID_REQUEST", validation.Error(), err, http.StatusBadRequest).
			WithDetails(map[string]any{"field": validation.Field, "reason": validation.Reason})
	case errors.As(err, &stock):
		return pkg.NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock", err, http.StatusConflict).
			WithDetails(map[string]any{"product_id": stock.ProductID, "available": stock.Available, "requested": stock.Requested})
	case errors.As(err, &transition):
		return pkg.NewDomainError("INVALID_TRANSITION", "Sale cannot change to the requested status", err, http.StatusConflict).
			WithDetails(map[string]any{"sale_id": transition.SaleID, "from": string(transition.From), "to": string(transition.To)})
	case errors.As(err, &denied):
		return pkg.NewDomainError("PERMISSION_DENIED", "Not allowed to perform this action", err, http.StatusForbidden).
			WithDetails(map[string]any{"action": string(denied.Action)})
	case errors.Is(err, entities.ErrSaleNotFound):
		return pkg.NewDomainError("SALE_NOT_FOUND", "Sale not found", err, http.StatusNotFound)
	case errors.Is(err, entities.ErrSaleItemNotFound):
		return pkg.NewDomainError("SALE_ITEM_NOT_FOUND", "Sale item not found", err, http.StatusNotFound)
	case errors.Is(err, entities.ErrProductNotFound):
		return pkg.NewDomainError("PRODUCT_NOT_FOUND", "Product not found", err, http.StatusNotFound)
	case errors.Is(err, entities.ErrProductExists):
		return pkg.NewDomainError("PRODUCT_ALREADY_EXISTS", "Product already exists", err, http.StatusConflict)
	case errors.Is(err, entities.ErrClientNotFound):
		return pkg.NewDomainError("CLIENT_NOT_FOUND", "Client not found", err, http.StatusNotFound)
	case errors.Is(err, entities.ErrClientExists):
		return pkg.NewDomainError("CLIENT_ALREADY_EXISTS", "A client with this CPF already exists", err, http.StatusConflict)
	case errors.Is(err, entities.ErrIdempotencyInFlight):
		return pkg.NewDomainError("IDEMPOTENCY_IN_FLIGHT", "A request with this Idempotency-Key is still being processed", err, http.StatusConflict)
	case errors.Is(err, entities.ErrPersistence), errors.Is(err, entities.ErrConcurrentUpdate):
		return pkg.NewDomainError("PERSISTENCE_UNAVAILABLE", "Storage temporarily unavailable, retry the request", err, http.StatusServiceUnavailable)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func respondError(c *gin.Context, err error) {
	appErr := mapError(err)
	if appErr.HTTPStatus == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
