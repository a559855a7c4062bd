package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

// Payment records the payment attempt for an order. Payment outcome never
// drives order status transitions.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Order         *Order              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TransactionID *string             `gorm:"column:transaction_id;uniqueIndex"`
	PaidAt        *time.Time          `gorm:"column:paid_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
