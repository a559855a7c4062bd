package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
)

// SalesTotals is the raw aggregate over delivered orders in a window.
type SalesTotals struct {
	TotalOrders int64
	TotalSales  decimal.Decimal
}

// ReportRepository defines the aggregate queries behind the reporting service.
type ReportRepository interface {
	WithTx(tx *gorm.DB) ReportRepository
	SalesBetween(ctx context.Context, from, to time.Time) (*SalesTotals, error)
	CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	CountUsersByRole(ctx context.Context) (map[enums.UserRole]int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CreateSnapshot(ctx context.Context, snapshot *models.SalesSnapshot) (*models.SalesSnapshot, error)
	ListSnapshots(ctx context.Context, reportType enums.ReportType, limit int) ([]models.SalesSnapshot, error)
}

// Repository exposes report aggregates backed by SQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a report repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ReportRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// SalesBetween aggregates delivered orders inside the inclusive window.
func (r *Repository) SalesBetween(ctx context.Context, from, to time.Time) (*SalesTotals, error) {
	var row struct {
		TotalOrders int64
		TotalSales  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_sales").
		Where("status = ?", enums.OrderStatusDelivered).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &SalesTotals{TotalOrders: row.TotalOrders, TotalSales: row.TotalSales}, nil
}

// CountOrdersByStatus returns order counts grouped by lifecycle status.
func (r *Repository) CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	var rows []struct {
		Status enums.OrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// CountUsersByRole returns account counts grouped by role.
func (r *Repository) CountUsersByRole(ctx context.Context) (map[enums.UserRole]int64, error) {
	var rows []struct {
		Role  enums.UserRole
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.UserRole]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

// CountProducts returns the catalog size.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CreateSnapshot persists a sales rollup.
func (r *Repository) CreateSnapshot(ctx context.Context, snapshot *models.SalesSnapshot) (*models.SalesSnapshot, error) {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ListSnapshots returns the most recent rollups of the given type.
func (r *Repository) ListSnapshots(ctx context.Context, reportType enums.ReportType, limit int) ([]models.SalesSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []models.SalesSnapshot
	err := r.db.WithContext(ctx).
		Where("report_type = ?", reportType).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
