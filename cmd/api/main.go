package main

import (
	_ "geekgalaxy_pos/docs"
	"geekgalaxy_pos/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           GeekGalaxy POS API
// @version         1.0
// @description     Point of sale for a board game store: catalog, stock, clients and sale transactions.

// @host      localhost:8080
// @BasePath  /v1

// @tag.name         products
// @tag.description  Catalog and stock. Writes need SUPERVISOR or ADMIN.
// @tag.name         sales
// @tag.description  Atomic sales. Cancelling needs SUPERVISOR or ADMIN.
// @tag.name         clients
// @tag.description  Customer registry sales are attributed to.

// @securityDefinitions.apikey Principal
// @in header
// @name X-User-ID
// @description Identity set by the upstream authenticator. Roles travel in X-User-Roles.

func main() {
	routes.Run()
}
