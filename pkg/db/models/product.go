package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Price is the live price; orders
// snapshot it into OrderItem rows at placement time.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	ImagePath   *string         `gorm:"column:image_path"`
	IsFeatured  bool            `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
