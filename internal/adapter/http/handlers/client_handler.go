package handlers

import (
	"net/http"

	request "geekgalaxy_pos/internal/adapter/http/dto/request"
	response "geekgalaxy_pos/internal/adapter/http/dto/response"
	"geekgalaxy_pos/internal/adapter/http/middleware"
	"geekgalaxy_pos/internal/usecase"

	"github.com/gin-gonic/gin"
)

// ClientHandler handles the client registry endpoints.
type ClientHandler struct {
	usecase usecase.IClientUseCase
}

func NewClientHandler(uc usecase.IClientUseCase) *ClientHandler {
	return &ClientHandler{usecase: uc}
}

// CreateClient godoc
// @Summary      Register a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                       true  "Principal id"
// @Param        X-User-Roles  header  string                       true  "Comma separated roles"
// @Param        payload       body    request.CreateClientRequest  true  "Client"
// @Success      201  {object}  response.ClientResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      403  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Router       /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var payload request.CreateClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), middleware.PrincipalFrom(c), payload.ToClient())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromClient(created))
}

// ListClients godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        X-User-ID  header  string  true   "Principal id"
// @Param        search     query   string  false  "Matches name, CPF, email or city"
// @Success      200  {array}  response.ClientResponse
// @Router       /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var query request.ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	clients, err := h.usecase.List(c.Request.Context(), middleware.PrincipalFrom(c), query.ToFilter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromClients(clients))
}

// GetClient godoc
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        X-User-ID  header  string  true  "Principal id"
// @Param        id         path    string  true  "Client id"
// @Success      200  {object}  response.ClientResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.usecase.GetByID(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromClient(client))
}

// UpdateClient godoc
// @Summary      Update client contact details (not the CPF)
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        X-User-ID     header  string                       true  "Principal id"
// @Param        X-User-Roles  header  string                       true  "Comma separated roles"
// @Param        id            path    string                       true  "Client id"
// @Param        payload       body    request.UpdateClientRequest  true  "Fields to change"
// @Success      200  {object}  response.ClientResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /clients/{id} [patch]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var payload request.UpdateClientRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPayload.HTTPStatus, errInvalidPayload.ToHTTPError())
		return
	}

	client, err := h.usecase.UpdateDetails(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), payload.ToDetails())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromClient(client))
}
