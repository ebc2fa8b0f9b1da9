package auth

import (
	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"
)

// RolePolicy grants actions from the principal's roles.
//
//	sale:create          ATTENDANT, SUPERVISOR, ADMIN
//	sale:cancel          SUPERVISOR, ADMIN
//	sale:remove_item     SUPERVISOR, ADMIN
//	sale:override_price  SUPERVISOR, ADMIN
//	product:write        STOCK_CLERK, SUPERVISOR, ADMIN
//	client:write         ATTENDANT, SUPERVISOR, ADMIN
//	sale:read, product:read, client:read  any authenticated principal
//
// The resource is not consulted: no grant depends on who owns the sale.
type RolePolicy struct {
	grants map[entities.Action][]entities.Role
}

var _ interfaces.IAccessPolicy = (*RolePolicy)(nil)

func NewRolePolicy() *RolePolicy {
	return &RolePolicy{grants: map[entities.Action][]entities.Role{
		entities.ActionSaleCreate:        {entities.RoleAttendant, entities.RoleSupervisor, entities.RoleAdmin},
		entities.ActionSaleCancel:        {entities.RoleSupervisor, entities.RoleAdmin},
		entities.ActionSaleRemoveItem:    {entities.RoleSupervisor, entities.RoleAdmin},
		entities.ActionSaleOverridePrice: {entities.RoleSupervisor, entities.RoleAdmin},
		entities.ActionProductWrite:      {entities.RoleStockClerk, entities.RoleSupervisor, entities.RoleAdmin},
		entities.ActionClientWrite:       {entities.RoleAttendant, entities.RoleSupervisor, entities.RoleAdmin},
	}}
}

func (p *RolePolicy) CanPerform(principal entities.Principal, action entities.Action, _ string) bool {
	if principal.ID == "" {
		return false
	}
	switch action {
	case entities.ActionSaleRead, entities.ActionProductRead, entities.ActionClientRead:
		return true
	}

	for _, role := range p.grants[action] {
		if principal.HasRole(role) {
			return true
		}
	}
	return false
}
