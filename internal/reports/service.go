package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

// SalesReport is the aggregate returned for a reporting window.
type SalesReport struct {
	From          time.Time
	To            time.Time
	TotalOrders   int64
	TotalSales    decimal.Decimal
	AvgOrderValue decimal.Decimal
}

// Dashboard is the admin overview aggregate.
type Dashboard struct {
	OrdersByStatus map[enums.OrderStatus]int64
	UsersByRole    map[enums.UserRole]int64
	TotalProducts  int64
	RevenueToDate  decimal.Decimal
}

// Service exposes reporting aggregates for admins.
type Service interface {
	Sales(ctx context.Context, from, to time.Time) (*SalesReport, error)
	SalesForType(ctx context.Context, reportType enums.ReportType, now time.Time) (*SalesReport, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Snapshot(ctx context.Context, reportType enums.ReportType) (*models.SalesSnapshot, error)
	Snapshots(ctx context.Context, reportType enums.ReportType, limit int) ([]models.SalesSnapshot, error)
}

type service struct {
	repo ReportRepository
	now  func() time.Time
}

// NewService builds a reports service backed by the provided repository.
func NewService(repo ReportRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Sales aggregates delivered orders across the inclusive [from, to] window.
func (s *service) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window is required")
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window end precedes start")
	}

	totals, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sales")
	}

	avg := decimal.Zero
	if totals.TotalOrders > 0 {
		avg = totals.TotalSales.DivRound(decimal.NewFromInt(totals.TotalOrders), 2)
	}

	return &SalesReport{
		From:          from,
		To:            to,
		TotalOrders:   totals.TotalOrders,
		TotalSales:    totals.TotalSales,
		AvgOrderValue: avg,
	}, nil
}

// SalesForType aggregates the trailing daily, weekly, or monthly window
// ending at now.
func (s *service) SalesForType(ctx context.Context, reportType enums.ReportType, now time.Time) (*SalesReport, error) {
	from, err := windowStart(reportType, now)
	if err != nil {
		return nil, err
	}
	return s.Sales(ctx, from, now)
}

// Dashboard assembles the admin overview.
func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	users, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	epoch := time.Unix(0, 0).UTC()
	totals, err := s.repo.SalesBetween(ctx, epoch, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate revenue")
	}

	return &Dashboard{
		OrdersByStatus: orders,
		UsersByRole:    users,
		TotalProducts:  products,
		RevenueToDate:  totals.TotalSales,
	}, nil
}

// Snapshot persists the current rollup for the requested window type.
func (s *service) Snapshot(ctx context.Context, reportType enums.ReportType) (*models.SalesSnapshot, error) {
	report, err := s.SalesForType(ctx, reportType, s.now().UTC())
	if err != nil {
		return nil, err
	}

	snapshot := &models.SalesSnapshot{
		ReportType:  reportType,
		TotalSales:  report.TotalSales,
		TotalOrders: int(report.TotalOrders),
	}
	created, err := s.repo.CreateSnapshot(ctx, snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist snapshot")
	}
	return created, nil
}

func (s *service) Snapshots(ctx context.Context, reportType enums.ReportType, limit int) ([]models.SalesSnapshot, error) {
	if !reportType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report type")
	}
	rows, err := s.repo.ListSnapshots(ctx, reportType, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list snapshots")
	}
	return rows, nil
}

func windowStart(reportType enums.ReportType, now time.Time) (time.Time, error) {
	switch reportType {
	case enums.ReportTypeDaily:
		return now.AddDate(0, 0, -1), nil
	case enums.ReportTypeWeekly:
		return now.AddDate(0, 0, -7), nil
	case enums.ReportTypeMonthly:
		return now.AddDate(0, -1, 0), nil
	default:
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid report type")
	}
}
