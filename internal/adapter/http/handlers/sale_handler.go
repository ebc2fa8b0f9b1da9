package handlers

import (
	"net/http"

	request "geekgalaxy_pos/internal/adapter/http/dto/request"
	response "geekgalaxy_pos/internal/adapter/http/dto/response"
	"geekgalaxy_pos/internal/adapter/http/middleware"
	"geekgalaxy_pos/internal/usecase"

	"github.com/gin-gonic/gin"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// SaleHandler handles sale registration, cancellation and line removal.
type SaleHandler struct {
	usecase usecase.ISaleUseCase
}

func NewSaleHandler(uc usecase.ISaleUseCase) *SaleHandler {
	return &SaleHandler{usecase: uc}
}

// CreateSale godoc
// @Summary      Register a sale
// @Description  Reserves stock for every item and records the sale as COMPLETED in one transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-User-ID        header  string                     true   "Principal id"
// @Param        X-User-Roles     header  string                     true   "Comma separated roles"
// @Param        Idempotency-Key  header  string                     false  "Client retry key"
// @Param        payload          body    request.CreateSaleRequest  true   "Sale"
// @Success      201  {object}  response.SaleResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      403  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Failure      503  {object}  pkg.HTTPError
// @Router       /sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var payload request.CreateSaleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	sale, err := h.usecase.CreateSale(c.Request.Context(), middleware.PrincipalFrom(c), payload.ToCommand(c.GetHeader(HeaderIdempotencyKey)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromSale(sale))
}

// ListSales godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        X-User-ID  header  string  true   "Principal id"
// @Param        seller_id  query   string  false  "Seller filter"
// @Param        status     query   string  false  "COMPLETED or CANCELLED"
// @Success      200  {array}  response.SaleResponse
// @Router       /sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var query request.ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	sales, err := h.usecase.List(c.Request.Context(), middleware.PrincipalFrom(c), query.ToFilter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromSales(sales))
}

// GetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        X-User-ID  header  string  true  "Principal id"
// @Param        id         path    string  true  "Sale id"
// @Success      200  {object}  response.SaleResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	sale, err := h.usecase.GetByID(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromSale(sale))
}

// CancelSale godoc
// @Summary      Cancel a completed sale
// @Description  Supervisor or admin only. Returns every item to stock, marks the payment REFUNDED and notifies finance.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                     true   "Principal id"
// @Param        X-User-Roles  header  string                     true   "Comma separated roles"
// @Param        id            path    string                     true   "Sale id"
// @Param        payload       body    request.CancelSaleRequest  false  "Cancellation note"
// @Success      200  {object}  response.SaleResponse
// @Failure      403  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) CancelSale(c *gin.Context) {
	var payload request.CancelSaleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
			return
		}
	}

	sale, err := h.usecase.CancelSale(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), payload.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromSale(sale))
}

// RemoveSaleItem godoc
// @Summary      Remove a line item from a completed sale
// @Description  Returns the item's quantity to stock and recomputes the total. Supervisor only.
// @Tags         sales
// @Produce      json
// @Param        X-User-ID     header  string  true  "Principal id"
// @Param        X-User-Roles  header  string  true  "Comma separated roles"
// @Param        id            path    string  true  "Sale id"
// @Param        item_id       path    string  true  "Sale item id"
// @Success      200  {object}  response.SaleResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      403  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /sales/{id}/items/{item_id} [delete]
func (h *SaleHandler) RemoveSaleItem(c *gin.Context) {
	sale, err := h.usecase.RemoveSaleItem(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), c.Param("item_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromSale(sale))
}
