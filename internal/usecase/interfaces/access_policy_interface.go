package interfaces

import "geekgalaxy_pos/internal/domain/entities"

//go:generate mockgen -source=access_policy_interface.go -destination=mocks/mock_access_policy_interface.go -package=mock_interfaces

// IAccessPolicy decides whether a principal may perform an action.
// resource is the owner id of the target when the action is owner sensitive, otherwise empty.
type IAccessPolicy interface {
	CanPerform(principal entities.Principal, action entities.Action, resource string) bool
}
