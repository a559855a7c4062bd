package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating attached to a product.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   string    `gorm:"column:comment;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
