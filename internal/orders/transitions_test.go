package orders

import (
	"testing"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to enums.OrderStatus }{
		{enums.OrderStatusPending, enums.OrderStatusProcessing},
		{enums.OrderStatusPending, enums.OrderStatusCancelled},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusProcessing, enums.OrderStatusCancelled},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to enums.OrderStatus }{
		{enums.OrderStatusPending, enums.OrderStatusShipped},
		{enums.OrderStatusPending, enums.OrderStatusDelivered},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled},
		{enums.OrderStatusShipped, enums.OrderStatusProcessing},
		{enums.OrderStatusDelivered, enums.OrderStatusPending},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusProcessing},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestGuardTransitionErrors(t *testing.T) {
	t.Parallel()

	if err := GuardTransition(enums.OrderStatusPending, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := GuardTransition(enums.OrderStatusDelivered, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for terminal order, got %v", err)
	}

	err = GuardTransition(enums.OrderStatus("bogus"), enums.OrderStatusPending)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bogus status, got %v", err)
	}
}

func TestProjectDeliveryStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		event enums.DeliveryStatus
		want  enums.OrderStatus
	}{
		{enums.DeliveryStatusAssigned, enums.OrderStatusProcessing},
		{enums.DeliveryStatusPickedUp, enums.OrderStatusProcessing},
		{enums.DeliveryStatusOutForDelivery, enums.OrderStatusShipped},
		{enums.DeliveryStatusDelivered, enums.OrderStatusDelivered},
	}
	for _, tc := range cases {
		got, err := ProjectDeliveryStatus(tc.event)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tc.event, err)
		}
		if got != tc.want {
			t.Fatalf("ProjectDeliveryStatus(%s) = %s, want %s", tc.event, got, tc.want)
		}
	}

	if _, err := ProjectDeliveryStatus(enums.DeliveryStatus("lost")); err == nil {
		t.Fatal("expected error for unknown delivery status")
	}
}
