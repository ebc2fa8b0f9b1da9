package entities

import "strings"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleStockClerk Role = "STOCK_CLERK"
	RoleAttendant  Role = "ATTENDANT"
)

// Action names a guarded capability.
type Action string

const (
	ActionSaleCreate        Action = "sale:create"
	ActionSaleCancel        Action = "sale:cancel"
	ActionSaleRemoveItem    Action = "sale:remove_item"
	ActionSaleOverridePrice Action = "sale:override_price"
	ActionSaleRead          Action = "sale:read"
	ActionProductWrite      Action = "product:write"
	ActionProductRead       Action = "product:read"
	ActionClientWrite       Action = "client:write"
	ActionClientRead        Action = "client:read"
)

// Principal is the already-authenticated caller of an operation.
type Principal struct {
	ID    string
	Roles []Role
}

func (p Principal) HasRole(r Role) bool {
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// ParseRoles splits a comma separated role list, ignoring blanks and case.
func ParseRoles(raw string) []Role {
	var roles []Role
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		roles = append(roles, Role(part))
	}
	return roles
}
