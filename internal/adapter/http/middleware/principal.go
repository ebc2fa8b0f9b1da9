package middleware

import (
	"net/http"
	"strings"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/pkg"

	"github.com/gin-gonic/gin"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"

	principalKey = "pos.principal"
)

var errUnauthenticated = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Missing authenticated principal", http.StatusUnauthorized)

// RequirePrincipal reads the identity set by the upstream authenticator and rejects anonymous requests.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if id == "" {
			c.AbortWithStatusJSON(errUnauthenticated.HTTPStatus, errUnauthenticated.ToHTTPError())
			return
		}
		c.Set(principalKey, entities.Principal{
			ID:    id,
			Roles: entities.ParseRoles(c.GetHeader(HeaderUserRoles)),
		})
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequirePrincipal, or a zero principal.
func PrincipalFrom(c *gin.Context) entities.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return entities.Principal{}
	}
	p, _ := v.(entities.Principal)
	return p
}
