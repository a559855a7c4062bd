package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

// Order is the committed purchase record. Status is a projection of the
// delivery event history and is only written inside the same transaction
// that records the transition.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Customer         *User               `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	DeliveryPersonID *uuid.UUID          `gorm:"column:delivery_person_id;type:uuid"`
	DeliveryPerson   *User               `gorm:"foreignKey:DeliveryPersonID;constraint:OnDelete:SET NULL"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:decimal(10,2);not null"`
	Address          string              `gorm:"column:address;not null"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
