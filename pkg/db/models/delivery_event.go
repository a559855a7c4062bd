package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

// DeliveryEvent is one append-only record in an order's delivery history.
type DeliveryEvent struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	Order            *Order               `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveryPersonID *uuid.UUID           `gorm:"column:delivery_person_id;type:uuid"`
	DeliveryPerson   *User                `gorm:"foreignKey:DeliveryPersonID;constraint:OnDelete:SET NULL"`
	Status           enums.DeliveryStatus `gorm:"column:status;type:text;not null"`
	Notes            *string              `gorm:"column:notes"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
}
