package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
)

type stubReportRepo struct {
	totals    SalesTotals
	snapshots []*models.SalesSnapshot
}

func (s *stubReportRepo) WithTx(tx *gorm.DB) ReportRepository { return s }

func (s *stubReportRepo) SalesBetween(ctx context.Context, from, to time.Time) (*SalesTotals, error) {
	totals := s.totals
	return &totals, nil
}

func (s *stubReportRepo) CountOrdersByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	return map[enums.OrderStatus]int64{}, nil
}

func (s *stubReportRepo) CountUsersByRole(ctx context.Context) (map[enums.UserRole]int64, error) {
	return map[enums.UserRole]int64{}, nil
}

func (s *stubReportRepo) CountProducts(ctx context.Context) (int64, error) { return 0, nil }

func (s *stubReportRepo) CreateSnapshot(ctx context.Context, snapshot *models.SalesSnapshot) (*models.SalesSnapshot, error) {
	s.snapshots = append(s.snapshots, snapshot)
	return snapshot, nil
}

func (s *stubReportRepo) ListSnapshots(ctx context.Context, reportType enums.ReportType, limit int) ([]models.SalesSnapshot, error) {
	return nil, nil
}

func TestSalesComputesAverage(t *testing.T) {
	t.Parallel()

	repo := &stubReportRepo{totals: SalesTotals{TotalOrders: 4, TotalSales: decimal.RequireFromString("101.00")}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	report, err := svc.Sales(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.AvgOrderValue.Equal(decimal.RequireFromString("25.25")) {
		t.Fatalf("expected average 25.25, got %s", report.AvgOrderValue)
	}
}

func TestSalesZeroOrdersHasZeroAverage(t *testing.T) {
	t.Parallel()

	repo := &stubReportRepo{totals: SalesTotals{TotalOrders: 0, TotalSales: decimal.Zero}}
	svc, _ := NewService(repo)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Sales(context.Background(), from, from.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.AvgOrderValue.IsZero() {
		t.Fatalf("expected zero average, got %s", report.AvgOrderValue)
	}
}

func TestSalesRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubReportRepo{})

	from := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Sales(context.Background(), from, from.AddDate(0, 0, -1))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSnapshotPersistsRollup(t *testing.T) {
	t.Parallel()

	repo := &stubReportRepo{totals: SalesTotals{TotalOrders: 3, TotalSales: decimal.RequireFromString("60.00")}}
	svc, _ := NewService(repo)

	snapshot, err := svc.Snapshot(context.Background(), enums.ReportTypeWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.TotalOrders != 3 {
		t.Fatalf("expected 3 orders in snapshot, got %d", snapshot.TotalOrders)
	}
	if len(repo.snapshots) != 1 {
		t.Fatalf("expected one persisted snapshot, got %d", len(repo.snapshots))
	}
}
