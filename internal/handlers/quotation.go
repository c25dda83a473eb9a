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

// QuotationHandler manages quotations and their one-way conversion into
// invoices.
type QuotationHandler struct {
	DB *gorm.DB
}

func NewQuotationHandler(db *gorm.DB) *QuotationHandler {
	return &QuotationHandler{DB: db}
}

type quotationReq struct {
	ClientID        uint              `json:"client_id"`
	QuotationNumber string            `json:"quotation_number"`
	Date            string            `json:"date"`
	ValidUntil      string            `json:"valid_until"`
	Subject         string            `json:"subject"`
	Intro           string            `json:"intro"`
	Terms           string            `json:"terms"`
	Items           []models.LineItem `json:"items"`
	BasicPrice      float64           `json:"basic_price"`
	GSTRate         float64           `json:"gst_rate"`
}

// Collection: GET/POST /api/quotations
func (h *QuotationHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *QuotationHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Quotation{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		dbq = dbq.Where("status = ?", strings.ToLower(s))
	}
	var total int64
	dbq.Model(&models.Quotation{}).Count(&total)
	var qts []models.Quotation
	if err := dbq.Preload("Items").Preload("Client").Order("id desc").Limit(limit).Offset(offset).Find(&qts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list quotations", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": qts, "total": total, "limit": limit, "offset": offset})
}

func (h *QuotationHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req quotationReq
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
	number := strings.TrimSpace(req.QuotationNumber)
	if number == "" {
		number = h.nextNumber(companyID)
	} else if h.numberTaken(companyID, number, 0) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"quotation_number": "already exists"})
		return
	}
	qt := models.Quotation{
		CompanyID:       companyID,
		ClientID:        req.ClientID,
		QuotationNumber: number,
		Date:            parseDate(req.Date, time.Now()),
		Status:          models.StatusDraft,
		Subject:         req.Subject,
		Intro:           req.Intro,
		Terms:           req.Terms,
		BasicPrice:      req.BasicPrice,
		GSTRate:         req.GSTRate,
		Subtotal:        totals.Subtotal,
		GST:             totals.GST,
		Total:           totals.Total,
	}
	qt.ValidUntil = parseDate(req.ValidUntil, qt.Date.AddDate(0, 0, 30))
	// Blank subject/intro/terms fall back to the company defaults.
	if qt.Subject == "" || qt.Intro == "" || qt.Terms == "" {
		var company models.Company
		if err := h.DB.First(&company, companyID).Error; err == nil {
			if qt.Subject == "" {
				qt.Subject = company.QuotationSubject
			}
			if qt.Intro == "" {
				qt.Intro = company.QuotationIntro
			}
			if qt.Terms == "" {
				qt.Terms = company.QuotationTerms
			}
		}
	}
	for _, it := range items {
		qt.Items = append(qt.Items, models.QuotationItem{LineItem: it})
	}
	if err := h.DB.Create(&qt).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create quotation", nil)
		return
	}
	qt.Client = client
	httpx.JSON(w, http.StatusCreated, qt)
}

// Get: GET /api/quotations/get?id=...
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	qt, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, qt)
}

// Update: PUT /api/quotations/update?id=...
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	qt, ok := h.load(w, r)
	if !ok {
		return
	}
	if qt.Status == "converted" {
		httpx.JSONError(w, http.StatusBadRequest, "quotation already converted", nil)
		return
	}
	var req quotationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if req.ClientID != 0 && req.ClientID != qt.ClientID {
		var client models.Client
		if err := h.DB.Where("company_id = ?", qt.CompanyID).First(&client, req.ClientID).Error; err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"client_id": "unknown client"})
			return
		}
		qt.ClientID = req.ClientID
		qt.Client = client
	}
	items, totals, v := prepareItems(req.Items, req.BasicPrice, req.GSTRate)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if n := strings.TrimSpace(req.QuotationNumber); n != "" && n != qt.QuotationNumber {
		if h.numberTaken(qt.CompanyID, n, qt.ID) {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"quotation_number": "already exists"})
			return
		}
		qt.QuotationNumber = n
	}
	qt.Date = parseDate(req.Date, qt.Date)
	qt.ValidUntil = parseDate(req.ValidUntil, qt.ValidUntil)
	qt.Subject = req.Subject
	qt.Intro = req.Intro
	qt.Terms = req.Terms
	qt.BasicPrice = req.BasicPrice
	qt.GSTRate = req.GSTRate
	qt.Subtotal = totals.Subtotal
	qt.GST = totals.GST
	qt.Total = totals.Total

	newItems := make([]models.QuotationItem, 0, len(items))
	for _, it := range items {
		newItems = append(newItems, models.QuotationItem{QuotationID: qt.ID, LineItem: it})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", qt.ID).Delete(&models.QuotationItem{}).Error; err != nil {
			return err
		}
		if len(newItems) > 0 {
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		qt.Items = nil
		return tx.Omit("Items").Save(qt).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update quotation", nil)
		return
	}
	qt.Items = newItems
	httpx.JSON(w, http.StatusOK, qt)
}

// Delete: DELETE /api/quotations/delete?id=...
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	qt, ok := h.load(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", qt.ID).Delete(&models.QuotationItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quotation{}, qt.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: PATCH /api/quotations/status?id=...
func (h *QuotationHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w, "PATCH")
		return
	}
	qt, ok := h.load(w, r)
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
	// "converted" is reserved for the convert operation.
	if status == models.StatusConverted || !models.ValidStatus(models.DocQuotation, status) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed",
			map[string]string{"status": "must be one of: " + strings.Join(models.AllowedStatuses(models.DocQuotation), ", ")})
		return
	}
	if err := h.DB.Model(&models.Quotation{}).Where("id = ?", qt.ID).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}

// Convert: POST /api/quotations/convert?id=...
//
// Copies the quotation into a fresh draft invoice, recomputing totals from
// the copied lines, and marks the quotation converted. Converting twice is
// rejected.
func (h *QuotationHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	qt, ok := h.load(w, r)
	if !ok {
		return
	}
	if qt.Status == "converted" || qt.ConvertedInvoiceID != 0 {
		httpx.JSONError(w, http.StatusBadRequest, "quotation already converted", nil)
		return
	}
	lines := make([]models.LineItem, 0, len(qt.Items))
	for _, it := range qt.Items {
		lines = append(lines, it.LineItem)
	}
	annotated, totals := billing.ComputeTotals(lines, qt.BasicPrice, qt.GSTRate)
	inv := models.Invoice{
		CompanyID:     qt.CompanyID,
		ClientID:      qt.ClientID,
		InvoiceNumber: nextDocNumber(h.DB, &models.Invoice{}, "invoice_number", qt.CompanyID, "INV"),
		Date:          time.Now(),
		DueDate:       time.Now().AddDate(0, 1, 0),
		Status:        models.StatusDraft,
		BasicPrice:    qt.BasicPrice,
		GSTRate:       qt.GSTRate,
		Subtotal:      totals.Subtotal,
		GST:           totals.GST,
		Total:         totals.Total,
	}
	for _, it := range annotated {
		inv.Items = append(inv.Items, models.InvoiceItem{LineItem: it})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		return tx.Model(&models.Quotation{}).Where("id = ?", qt.ID).
			Updates(map[string]any{"status": "converted", "converted_invoice_id": inv.ID}).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to convert quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"invoice_id": inv.ID, "invoice_number": inv.InvoiceNumber})
}

// Print: GET /api/quotations/print?id=...
func (h *QuotationHandler) Print(w http.ResponseWriter, r *http.Request) {
	qt, ok := h.load(w, r)
	if !ok {
		return
	}
	var company models.Company
	if err := h.DB.First(&company, qt.CompanyID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load company", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotation":       qt,
		"company":         company,
		"client":          qt.Client,
		"amount_in_words": billing.AmountInWords(qt.Total),
	})
}

func (h *QuotationHandler) load(w http.ResponseWriter, r *http.Request) (*models.Quotation, bool) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return nil, false
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return nil, false
	}
	var qt models.Quotation
	err := h.DB.Where("company_id = ?", companyID).Preload("Items").Preload("Client").First(&qt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "quotation not found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load quotation", nil)
		return nil, false
	}
	return &qt, true
}

func (h *QuotationHandler) numberTaken(companyID uint, number string, excludeID uint) bool {
	var cnt int64
	h.DB.Model(&models.Quotation{}).
		Where("company_id = ? AND quotation_number = ? AND id <> ?", companyID, number, excludeID).
		Count(&cnt)
	return cnt > 0
}

func (h *QuotationHandler) nextNumber(companyID uint) string {
	return nextDocNumber(h.DB, &models.Quotation{}, "quotation_number", companyID, "QTN")
}
