package handlers

import (
	"net/http"

	request "geekgalaxy_pos/internal/adapter/http/dto/request"
	response "geekgalaxy_pos/internal/adapter/http/dto/response"
	"geekgalaxy_pos/internal/adapter/http/middleware"
	"geekgalaxy_pos/internal/usecase"

	"github.com/gin-gonic/gin"
)

// ProductHandler handles the catalog endpoints.
type ProductHandler struct {
	usecase usecase.IProductUseCase
}

func NewProductHandler(uc usecase.IProductUseCase) *ProductHandler {
	return &ProductHandler{usecase: uc}
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                        true  "Principal id"
// @Param        X-User-Roles  header  string                        true  "Comma separated roles"
// @Param        payload       body    request.CreateProductRequest  true  "Product"
// @Success      201  {object}  response.ProductResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      403  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var payload request.CreateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}
	product, err := payload.ToProduct()
	if err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), middleware.PrincipalFrom(c), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromProduct(created))
}

// ListProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        X-User-ID  header  string  true   "Principal id"
// @Param        search     query   string  false  "Matches name, barcode, description or category"
// @Param        ordering   query   string  false  "name, unit_price, quantity or category; prefix with - for descending"
// @Success      200  {array}  response.ProductResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query request.ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	products, err := h.usecase.List(c.Request.Context(), middleware.PrincipalFrom(c), query.ToFilter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromProducts(products))
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        X-User-ID  header  string  true  "Principal id"
// @Param        id         path    string  true  "Product id"
// @Success      200  {object}  response.ProductResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.usecase.GetByID(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromProduct(product))
}

// UpdateProduct godoc
// @Summary      Update product details (not stock)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                        true  "Principal id"
// @Param        X-User-Roles  header  string                        true  "Comma separated roles"
// @Param        id            path    string                        true  "Product id"
// @Param        payload       body    request.UpdateProductRequest  true  "Fields to change"
// @Success      200  {object}  response.ProductResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var payload request.UpdateProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	product, err := h.usecase.UpdateDetails(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), payload.ToDetails())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromProduct(product))
}

// RestockProduct godoc
// @Summary      Add stock to a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                  true  "Principal id"
// @Param        X-User-Roles  header  string                  true  "Comma separated roles"
// @Param        id            path    string                  true  "Product id"
// @Param        payload       body    request.RestockRequest  true  "Quantity to add"
// @Success      200  {object}  response.ProductResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /products/{id}/restock [post]
func (h *ProductHandler) RestockProduct(c *gin.Context) {
	var payload request.RestockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	product, err := h.usecase.Restock(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), payload.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromProduct(product))
}
