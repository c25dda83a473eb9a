package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// PaymentHandler records payments against invoices and flips an invoice to
// paid once verified payments cover its total.
type PaymentHandler struct {
	DB *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{DB: db}
}

type paymentReq struct {
	InvoiceID uint    `json:"invoice_id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Mode      string  `json:"mode"`
	Status    string  `json:"status"`
	Reference string  `json:"reference"`
	Notes     string  `json:"notes"`
}

// Collection: GET/POST /api/payments
func (h *PaymentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Payment{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if v := r.URL.Query().Get("invoice_id"); v != "" {
		dbq = dbq.Where("invoice_id = ?", v)
	}
	var total int64
	dbq.Model(&models.Payment{}).Count(&total)
	var payments []models.Payment
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments, "total": total, "limit": limit, "offset": offset})
}

func (h *PaymentHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req paymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	v := validation.Violations{}
	if req.InvoiceID == 0 {
		v["invoice_id"] = "required"
	}
	validation.PositiveFloat("amount", req.Amount, v)
	validation.Required("mode", req.Mode, v)
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = "pending"
	}
	if !models.ValidStatus(models.DocPayment, status) {
		v["status"] = "must be one of: " + strings.Join(models.AllowedStatuses(models.DocPayment), ", ")
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	var inv models.Invoice
	if err := h.DB.Where("company_id = ?", companyID).First(&inv, req.InvoiceID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "invoice not found", nil)
		return
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = "PAY-" + uuid.NewString()[:8]
	}
	payment := models.Payment{
		CompanyID: companyID,
		InvoiceID: inv.ID,
		Date:      parseDate(req.Date, time.Now()),
		Amount:    req.Amount,
		Mode:      strings.ToLower(strings.TrimSpace(req.Mode)),
		Status:    status,
		Reference: reference,
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&payment).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to record payment", nil)
		return
	}
	h.settleInvoice(&inv)
	httpx.JSON(w, http.StatusCreated, payment)
}

// Status: PATCH /api/payments/status?id=...
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w, "PATCH")
		return
	}
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var payment models.Payment
	if err := h.DB.Where("company_id = ?", companyID).First(&payment, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "payment not found", nil)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !models.ValidStatus(models.DocPayment, status) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed",
			map[string]string{"status": "must be one of: " + strings.Join(models.AllowedStatuses(models.DocPayment), ", ")})
		return
	}
	if err := h.DB.Model(&models.Payment{}).Where("id = ?", payment.ID).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	var inv models.Invoice
	if err := h.DB.First(&inv, payment.InvoiceID).Error; err == nil {
		h.settleInvoice(&inv)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}

// Delete: DELETE /api/payments/delete?id=...
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	res := h.DB.Where("company_id = ?", companyID).Delete(&models.Payment{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete payment", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "payment not found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// settleInvoice marks the invoice paid when verified payments reach the
// total, and reverts paid back to sent when they no longer do.
func (h *PaymentHandler) settleInvoice(inv *models.Invoice) {
	var paid float64
	h.DB.Model(&models.Payment{}).
		Where("invoice_id = ? AND status = ?", inv.ID, "verified").
		Select("COALESCE(SUM(amount), 0)").Scan(&paid)
	switch {
	case paid >= inv.Total && inv.Total > 0 && inv.Status != "paid":
		h.DB.Model(inv).Update("status", "paid")
	case paid < inv.Total && inv.Status == "paid":
		h.DB.Model(inv).Update("status", "sent")
	}
}
