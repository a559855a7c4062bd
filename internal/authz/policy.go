package authz

import (
	"fmt"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

// Operation names a protected action exposed by the API.
type Operation string

const (
	OpCatalogManage     Operation = "catalog.manage"
	OpCartManage        Operation = "cart.manage"
	OpWishlistManage    Operation = "wishlist.manage"
	OpCheckout          Operation = "checkout.place"
	OpOrderViewOwn      Operation = "order.view_own"
	OpOrderCancelOwn    Operation = "order.cancel_own"
	OpOrderListAll      Operation = "order.list_all"
	OpOrderSetStatus    Operation = "order.set_status"
	OpOrderDelete       Operation = "order.delete"
	OpDeliveryAssign    Operation = "delivery.assign"
	OpDeliveryListOwn   Operation = "delivery.list_own"
	OpDeliveryUpdateOwn Operation = "delivery.update_own"
	OpReportsView       Operation = "reports.view"
	OpUsersManage       Operation = "users.manage"
	OpReviewCreate      Operation = "review.create"
	OpProfileView       Operation = "profile.view"
	OpContactInboxView  Operation = "contact.inbox_view"
)

// policy is the single source of truth for which roles may perform which
// operations. An operation absent from the table is denied for every role.
var policy = map[Operation]map[enums.UserRole]struct{}{
	OpCatalogManage:     roles(enums.UserRoleAdmin),
	OpCartManage:        roles(enums.UserRoleCustomer),
	OpWishlistManage:    roles(enums.UserRoleCustomer),
	OpCheckout:          roles(enums.UserRoleCustomer),
	OpOrderViewOwn:      roles(enums.UserRoleCustomer),
	OpOrderCancelOwn:    roles(enums.UserRoleCustomer),
	OpOrderListAll:      roles(enums.UserRoleAdmin),
	OpOrderSetStatus:    roles(enums.UserRoleAdmin),
	OpOrderDelete:       roles(enums.UserRoleAdmin),
	OpDeliveryAssign:    roles(enums.UserRoleAdmin),
	OpDeliveryListOwn:   roles(enums.UserRoleDelivery),
	OpDeliveryUpdateOwn: roles(enums.UserRoleDelivery),
	OpReportsView:       roles(enums.UserRoleAdmin),
	OpUsersManage:       roles(enums.UserRoleAdmin),
	OpReviewCreate:      roles(enums.UserRoleCustomer),
	OpProfileView:       roles(enums.UserRoleCustomer, enums.UserRoleAdmin, enums.UserRoleDelivery),
	OpContactInboxView:  roles(enums.UserRoleAdmin),
}

func roles(list ...enums.UserRole) map[enums.UserRole]struct{} {
	set := make(map[enums.UserRole]struct{}, len(list))
	for _, role := range list {
		set[role] = struct{}{}
	}
	return set
}

// Allowed reports whether the role may perform the operation.
func Allowed(op Operation, role enums.UserRole) bool {
	allowed, ok := policy[op]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// Require returns a coded forbidden error when the role may not perform the operation.
func Require(op Operation, role enums.UserRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor role")
	}
	if !Allowed(op, role) {
		return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %s may not perform %s", role, op))
	}
	return nil
}
