package enums

import "fmt"

// DeliveryStatus labels one event in an order's delivery history.
type DeliveryStatus string

const (
	DeliveryStatusAssigned       DeliveryStatus = "assigned"
	DeliveryStatusPickedUp       DeliveryStatus = "picked_up"
	DeliveryStatusOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryStatusDelivered      DeliveryStatus = "delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusAssigned,
	DeliveryStatusPickedUp,
	DeliveryStatusOutForDelivery,
	DeliveryStatusDelivered,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
