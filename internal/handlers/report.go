package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/billing"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
)

// ReportHandler aggregates tenant numbers for the dashboard.
type ReportHandler struct {
	DB *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{DB: db}
}

type dashboardStats struct {
	InvoiceCount     int64   `json:"invoice_count"`
	QuotationCount   int64   `json:"quotation_count"`
	ClientCount      int64   `json:"client_count"`
	TotalInvoiced    float64 `json:"total_invoiced"`
	TotalReceived    float64 `json:"total_received"`
	TotalOutstanding float64 `json:"total_outstanding"`
	TotalExpenses    float64 `json:"total_expenses"`
	OverdueCount     int64   `json:"overdue_count"`
	DraftCount       int64   `json:"draft_count"`
	MonthInvoiced    float64 `json:"month_invoiced"`
	MonthExpenses    float64 `json:"month_expenses"`
}

// Dashboard: GET /api/reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, dashboardStats{})
		return
	}
	var stats dashboardStats
	h.DB.Model(&models.Invoice{}).Where("company_id = ?", companyID).Count(&stats.InvoiceCount)
	h.DB.Model(&models.Quotation{}).Where("company_id = ?", companyID).Count(&stats.QuotationCount)
	h.DB.Model(&models.Client{}).Where("company_id = ?", companyID).Count(&stats.ClientCount)
	h.DB.Model(&models.Invoice{}).Where("company_id = ? AND status = ?", companyID, "overdue").Count(&stats.OverdueCount)
	h.DB.Model(&models.Invoice{}).Where("company_id = ? AND status = ?", companyID, "draft").Count(&stats.DraftCount)

	h.DB.Model(&models.Invoice{}).Where("company_id = ?", companyID).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.TotalInvoiced)
	h.DB.Model(&models.Payment{}).Where("company_id = ? AND status = ?", companyID, "verified").
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalReceived)
	h.DB.Model(&models.Expense{}).Where("company_id = ?", companyID).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalExpenses)

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day()).Truncate(24 * time.Hour)
	h.DB.Model(&models.Invoice{}).Where("company_id = ? AND date >= ?", companyID, monthStart).
		Select("COALESCE(SUM(total), 0)").Scan(&stats.MonthInvoiced)
	h.DB.Model(&models.Expense{}).Where("company_id = ? AND date >= ?", companyID, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthExpenses)

	stats.TotalInvoiced = billing.Round2(stats.TotalInvoiced)
	stats.TotalReceived = billing.Round2(stats.TotalReceived)
	stats.TotalOutstanding = billing.Round2(stats.TotalInvoiced - stats.TotalReceived)
	stats.TotalExpenses = billing.Round2(stats.TotalExpenses)
	stats.MonthInvoiced = billing.Round2(stats.MonthInvoiced)
	stats.MonthExpenses = billing.Round2(stats.MonthExpenses)

	httpx.JSON(w, http.StatusOK, stats)
}
