package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/billing"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
)

// InvoiceHandler owns the invoice lifecycle: drafts, edits, status moves,
// and the print payload consumed by the PDF renderer.
type InvoiceHandler struct {
	DB *gorm.DB
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db}
}

type invoiceReq struct {
	ClientID      uint              `json:"client_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Date          string            `json:"date"`
	DueDate       string            `json:"due_date"`
	Items         []models.LineItem `json:"items"`
	BasicPrice    float64           `json:"basic_price"`
	GSTRate       float64           `json:"gst_rate"`
	Notes         string            `json:"notes"`
}

// Collection: GET/POST /api/invoices
func (h *InvoiceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Invoice{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		dbq = dbq.Where("status = ?", strings.ToLower(s))
	}
	var total int64
	dbq.Model(&models.Invoice{}).Count(&total)
	var invs []models.Invoice
	if err := dbq.Preload("Items").Preload("Client").Order("id desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

func (h *InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"client_id": "required"})
		return
	}
	var client models.Client
	if err := h.DB.Where("company_id = ?", companyID).First(&client, req.ClientID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"client_id": "unknown client"})
		return
	}
	items, totals, v := prepareItems(req.Items, req.BasicPrice, req.GSTRate)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number = h.nextNumber(companyID)
	} else if h.numberTaken(companyID, number, 0) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"invoice_number": "already exists"})
		return
	}
	inv := models.Invoice{
		CompanyID:     companyID,
		ClientID:      req.ClientID,
		InvoiceNumber: number,
		Date:          parseDate(req.Date, time.Now()),
		Status:        models.StatusDraft,
		BasicPrice:    req.BasicPrice,
		GSTRate:       req.GSTRate,
		Subtotal:      totals.Subtotal,
		GST:           totals.GST,
		Total:         totals.Total,
		Notes:         req.Notes,
	}
	inv.DueDate = parseDate(req.DueDate, inv.Date.AddDate(0, 1, 0))
	for _, it := range items {
		inv.Items = append(inv.Items, models.InvoiceItem{LineItem: it})
	}
	if err := h.DB.Create(&inv).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create invoice", nil)
		return
	}
	inv.Client = client
	httpx.JSON(w, http.StatusCreated, inv)
}

// Get: GET /api/invoices/get?id=...
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Update: PUT /api/invoices/update?id=...
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	var req invoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.ClientID != 0 && req.ClientID != inv.ClientID {
		var client models.Client
		if err := h.DB.Where("company_id = ?", inv.CompanyID).First(&client, req.ClientID).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"client_id": "unknown client"})
			return
		}
		inv.ClientID = req.ClientID
		inv.Client = client
	}
	items, totals, v := prepareItems(req.Items, req.BasicPrice, req.GSTRate)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if n := strings.TrimSpace(req.InvoiceNumber); n != "" && n != inv.InvoiceNumber {
		if h.numberTaken(inv.CompanyID, n, inv.ID) {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"invoice_number": "already exists"})
			return
		}
		inv.InvoiceNumber = n
	}
	inv.Date = parseDate(req.Date, inv.Date)
	inv.DueDate = parseDate(req.DueDate, inv.DueDate)
	inv.BasicPrice = req.BasicPrice
	inv.GSTRate = req.GSTRate
	inv.Subtotal = totals.Subtotal
	inv.GST = totals.GST
	inv.Total = totals.Total
	inv.Notes = req.Notes

	newItems := make([]models.InvoiceItem, 0, len(items))
	for _, it := range items {
		newItems = append(newItems, models.InvoiceItem{InvoiceID: inv.ID, LineItem: it})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if len(newItems) > 0 {
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		inv.Items = nil
		return tx.Omit("Items").Save(inv).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update invoice", nil)
		return
	}
	inv.Items = newItems
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: DELETE /api/invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: PATCH /api/invoices/status?id=...
func (h *InvoiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w, "PATCH")
		return
	}
	inv, ok := h.load(w, r)
	if !ok {
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
	if !models.ValidStatus(models.DocInvoice, status) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed",
			map[string]string{"status": "must be one of: " + strings.Join(models.AllowedStatuses(models.DocInvoice), ", ")})
		return
	}
	if err := h.DB.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}

// Print: GET /api/invoices/print?id=...
//
// Returns the full payload the client-side PDF renderer needs: document,
// company letterhead, client block, and the total spelled out in words.
func (h *InvoiceHandler) Print(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	var company models.Company
	if err := h.DB.First(&company, inv.CompanyID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load company", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice":         inv,
		"company":         company,
		"client":          inv.Client,
		"amount_in_words": billing.RupeesInWords(inv.Total),
		"outstanding":     h.outstanding(inv),
	})
}

// outstanding is the invoice total minus verified payments.
func (h *InvoiceHandler) outstanding(inv *models.Invoice) float64 {
	var paid float64
	h.DB.Model(&models.Payment{}).
		Where("invoice_id = ? AND status = ?", inv.ID, "verified").
		Select("COALESCE(SUM(amount), 0)").Scan(&paid)
	return billing.Round2(inv.Total - paid)
}

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return nil, false
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return nil, false
	}
	var inv models.Invoice
	err := h.DB.Where("company_id = ?", companyID).Preload("Items").Preload("Client").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice not found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load invoice", nil)
		return nil, false
	}
	return &inv, true
}

func (h *InvoiceHandler) numberTaken(companyID uint, number string, excludeID uint) bool {
	var cnt int64
	h.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND invoice_number = ? AND id <> ?", companyID, number, excludeID).
		Count(&cnt)
	return cnt > 0
}

func (h *InvoiceHandler) nextNumber(companyID uint) string {
	return nextDocNumber(h.DB, &models.Invoice{}, "invoice_number", companyID, "INV")
}
