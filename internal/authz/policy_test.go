package authz

import (
	"testing"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

func TestPolicyRoleSeparation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		op      Operation
		role    enums.UserRole
		allowed bool
	}{
		{OpCatalogManage, enums.UserRoleAdmin, true},
		{OpCatalogManage, enums.UserRoleCustomer, false},
		{OpCatalogManage, enums.UserRoleDelivery, false},
		{OpCheckout, enums.UserRoleCustomer, true},
		{OpCheckout, enums.UserRoleAdmin, false},
		{OpCheckout, enums.UserRoleDelivery, false},
		{OpDeliveryAssign, enums.UserRoleAdmin, true},
		{OpDeliveryAssign, enums.UserRoleDelivery, false},
		{OpDeliveryUpdateOwn, enums.UserRoleDelivery, true},
		{OpDeliveryUpdateOwn, enums.UserRoleCustomer, false},
		{OpReportsView, enums.UserRoleAdmin, true},
		{OpReportsView, enums.UserRoleDelivery, false},
		{OpProfileView, enums.UserRoleCustomer, true},
		{OpProfileView, enums.UserRoleDelivery, true},
	}

	for _, tc := range cases {
		if got := Allowed(tc.op, tc.role); got != tc.allowed {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.op, tc.role, got, tc.allowed)
		}
	}
}

func TestRequireReturnsCodedErrors(t *testing.T) {
	t.Parallel()

	if err := Require(OpReportsView, enums.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Require(OpReportsView, enums.UserRoleCustomer)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	err = Require(OpReportsView, enums.UserRole("ghost"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error for invalid role, got %v", err)
	}
}

func TestUnknownOperationDenied(t *testing.T) {
	t.Parallel()

	if Allowed(Operation("nope"), enums.UserRoleAdmin) {
		t.Fatal("unknown operation must be denied")
	}
}
