package orders

import (
	"fmt"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

// allowedTransitions is the explicit order lifecycle. Terminal states have
// no outgoing edges; anything not listed here is rejected.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:  {},
	enums.OrderStatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// GuardTransition returns a coded state-conflict error for a disallowed move.
func GuardTransition(from, to enums.OrderStatus) error {
	if !from.IsValid() || !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", from, to),
		)
	}
	return nil
}

// deliveryProjection maps each delivery event onto the order status it
// implies. Order.status stays a projection of the delivery history.
var deliveryProjection = map[enums.DeliveryStatus]enums.OrderStatus{
	enums.DeliveryStatusAssigned:       enums.OrderStatusProcessing,
	enums.DeliveryStatusPickedUp:       enums.OrderStatusProcessing,
	enums.DeliveryStatusOutForDelivery: enums.OrderStatusShipped,
	enums.DeliveryStatusDelivered:      enums.OrderStatusDelivered,
}

// ProjectDeliveryStatus returns the order status implied by a delivery event.
func ProjectDeliveryStatus(status enums.DeliveryStatus) (enums.OrderStatus, error) {
	projected, ok := deliveryProjection[status]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery status %q", status))
	}
	return projected, nil
}
