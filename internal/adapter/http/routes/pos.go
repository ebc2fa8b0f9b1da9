package routes

import (
	"geekgalaxy_pos/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPing     = "/ping"
	PathProducts = "/products"
	PathSales    = "/sales"
	PathClients  = "/clients"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET(PathPing, handlers.Ping)
}

func addProductRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	products := rg.Group(PathProducts)
	{
		products.POST("", productHandler.CreateProduct)
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.PATCH("/:id", productHandler.UpdateProduct)
		products.POST("/:id/restock", productHandler.RestockProduct)
	}
}

func addSaleRoutes(rg *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	sales := rg.Group(PathSales)
	{
		sales.POST("", saleHandler.CreateSale)
		sales.GET("", saleHandler.ListSales)
		sales.GET("/:id", saleHandler.GetSale)
		sales.POST("/:id/cancel", saleHandler.CancelSale)
		// Supervisor only; the usecase enforces the role.
		sales.DELETE("/:id/items/:item_id", saleHandler.RemoveSaleItem)
	}
}

func addClientRoutes(rg *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clients := rg.Group(PathClients)
	{
		clients.POST("", clientHandler.CreateClient)
		clients.GET("", clientHandler.ListClients)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PATCH("/:id", clientHandler.UpdateClient)
	}
}
