package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/reports"
	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

type salesReportResponse struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalOrders   int64           `json:"total_orders"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

type snapshotResponse struct {
	ID          uuid.UUID       `json:"id"`
	ReportType  string          `json:"report_type"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int             `json:"total_orders"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newSalesReportResponse(report *reports.SalesReport) salesReportResponse {
	return salesReportResponse{
		From:          report.From,
		To:            report.To,
		TotalOrders:   report.TotalOrders,
		TotalSales:    report.TotalSales,
		AvgOrderValue: report.AvgOrderValue,
	}
}

func newSnapshotResponse(snapshot *models.SalesSnapshot) snapshotResponse {
	return snapshotResponse{
		ID:          snapshot.ID,
		ReportType:  string(snapshot.ReportType),
		TotalSales:  snapshot.TotalSales,
		TotalOrders: snapshot.TotalOrders,
		CreatedAt:   snapshot.CreatedAt,
	}
}

// SalesReport aggregates delivered orders over a window. The window comes
// either from a report type shorthand or explicit from/to bounds.
func SalesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			reportType, err := enums.ParseReportType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report type"))
				return
			}
			report, err := svc.SalesForType(r.Context(), reportType, time.Now())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, newSalesReportResponse(report))
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from == nil || to == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required when type is not set"))
			return
		}

		report, err := svc.Sales(r.Context(), *from, *to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSalesReportResponse(report))
	}
}

// Dashboard returns the admin overview counters.
func Dashboard(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// CreateReportSnapshot persists a point-in-time sales rollup.
func CreateReportSnapshot(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("type"))
		if raw == "" {
			raw = string(enums.ReportTypeDaily)
		}
		reportType, err := enums.ParseReportType(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report type"))
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), reportType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSnapshotResponse(snapshot))
	}
}

// ListReportSnapshots returns recent snapshots for a report type.
func ListReportSnapshots(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("type"))
		if raw == "" {
			raw = string(enums.ReportTypeDaily)
		}
		reportType, err := enums.ParseReportType(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report type"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 30, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Snapshots(r.Context(), reportType, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]snapshotResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newSnapshotResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
