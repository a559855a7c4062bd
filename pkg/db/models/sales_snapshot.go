package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

// SalesSnapshot persists a point-in-time sales rollup for dashboards.
type SalesSnapshot struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReportType  enums.ReportType `gorm:"column:report_type;type:text;not null"`
	TotalSales  decimal.Decimal  `gorm:"column:total_sales;type:decimal(10,2);not null"`
	TotalOrders int              `gorm:"column:total_orders;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}
