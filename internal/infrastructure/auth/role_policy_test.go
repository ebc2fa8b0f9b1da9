package auth

import (
	"testing"

	"geekgalaxy_pos/internal/domain/entities"
)

func TestRolePolicy_CanPerform(t *testing.T) {
	policy := NewRolePolicy()
	principal := func(id string, roles ...entities.Role) entities.Principal {
		return entities.Principal{ID: id, Roles: roles}
	}

	cases := []struct {
		name      string
		principal entities.Principal
		action    entities.Action
		resource  string
		want      bool
	}{
		{"attendant creates", principal("a1", entities.RoleAttendant), entities.ActionSaleCreate, "", true},
		{"clerk cannot sell", principal("c1", entities.RoleStockClerk), entities.ActionSaleCreate, "", false},
		{"attendant cannot cancel own sale", principal("a1", entities.RoleAttendant), entities.ActionSaleCancel, "a1", false},
		{"attendant cannot cancel others", principal("a1", entities.RoleAttendant), entities.ActionSaleCancel, "a2", false},
		{"admin cancels", principal("x1", entities.RoleAdmin), entities.ActionSaleCancel, "a1", true},
		{"supervisor cancels any", principal("s1", entities.RoleSupervisor), entities.ActionSaleCancel, "a2", true},
		{"attendant cannot remove items", principal("a1", entities.RoleAttendant), entities.ActionSaleRemoveItem, "a1", false},
		{"supervisor removes items", principal("s1", entities.RoleSupervisor), entities.ActionSaleRemoveItem, "a1", true},
		{"admin overrides price", principal("x1", entities.RoleAdmin), entities.ActionSaleOverridePrice, "", true},
		{"attendant cannot override price", principal("a1", entities.RoleAttendant), entities.ActionSaleOverridePrice, "", false},
		{"clerk writes products", principal("c1", entities.RoleStockClerk), entities.ActionProductWrite, "", true},
		{"attendant cannot write products", principal("a1", entities.RoleAttendant), entities.ActionProductWrite, "", false},
		{"attendant registers clients", principal("a1", entities.RoleAttendant), entities.ActionClientWrite, "", true},
		{"clerk cannot register clients", principal("c1", entities.RoleStockClerk), entities.ActionClientWrite, "", false},
		{"anyone reads clients", principal("c1", entities.RoleStockClerk), entities.ActionClientRead, "", true},
		{"anyone reads sales", principal("a1"), entities.ActionSaleRead, "", true},
		{"anonymous reads nothing", principal(""), entities.ActionProductRead, "", false},
		{"unknown action", principal("x1", entities.RoleAdmin), entities.Action("sale:delete"), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.CanPerform(tc.principal, tc.action, tc.resource); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
