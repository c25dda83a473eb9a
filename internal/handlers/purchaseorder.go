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
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// PurchaseOrderHandler manages outbound purchase orders. Suppliers are free
// text on the document rather than directory records.
type PurchaseOrderHandler struct {
	DB *gorm.DB
}

func NewPurchaseOrderHandler(db *gorm.DB) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{DB: db}
}

type purchaseOrderReq struct {
	PONumber        string            `json:"po_number"`
	SupplierName    string            `json:"supplier_name"`
	SupplierAddress string            `json:"supplier_address"`
	SupplierGSTIN   string            `json:"supplier_gstin"`
	Date            string            `json:"date"`
	Items           []models.LineItem `json:"items"`
	BasicPrice      float64           `json:"basic_price"`
	GSTRate         float64           `json:"gst_rate"`
	Notes           string            `json:"notes"`
}

// Collection: GET/POST /api/purchase-orders
func (h *PurchaseOrderHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *PurchaseOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.PurchaseOrder{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		dbq = dbq.Where("status = ?", strings.ToLower(s))
	}
	var total int64
	dbq.Model(&models.PurchaseOrder{}).Count(&total)
	var pos []models.PurchaseOrder
	if err := dbq.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&pos).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list purchase orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": pos, "total": total, "limit": limit, "offset": offset})
}

func (h *PurchaseOrderHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req purchaseOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.SupplierName = strings.TrimSpace(req.SupplierName)
	vv := validation.Violations{}
	validation.Required("supplier_name", req.SupplierName, vv)
	if !vv.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", vv)
		return
	}
	items, totals, v := prepareItems(req.Items, req.BasicPrice, req.GSTRate)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	number := strings.TrimSpace(req.PONumber)
	if number == "" {
		number = h.nextNumber(companyID)
	} else if h.numberTaken(companyID, number, 0) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"po_number": "already exists"})
		return
	}
	po := models.PurchaseOrder{
		CompanyID:       companyID,
		PONumber:        number,
		SupplierName:    req.SupplierName,
		SupplierAddress: req.SupplierAddress,
		SupplierGSTIN:   req.SupplierGSTIN,
		Date:            parseDate(req.Date, time.Now()),
		Status:          models.StatusDraft,
		BasicPrice:      req.BasicPrice,
		GSTRate:         req.GSTRate,
		Subtotal:        totals.Subtotal,
		GST:             totals.GST,
		Total:           totals.Total,
		Notes:           req.Notes,
	}
	for _, it := range items {
		po.Items = append(po.Items, models.PurchaseOrderItem{LineItem: it})
	}
	if err := h.DB.Create(&po).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create purchase order", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

// Get: GET /api/purchase-orders/get?id=...
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	po, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

// Update: PUT /api/purchase-orders/update?id=...
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	po, ok := h.load(w, r)
	if !ok {
		return
	}
	var req purchaseOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.SupplierName = strings.TrimSpace(req.SupplierName)
	vv := validation.Violations{}
	validation.Required("supplier_name", req.SupplierName, vv)
	if !vv.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", vv)
		return
	}
	items, totals, v := prepareItems(req.Items, req.BasicPrice, req.GSTRate)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if n := strings.TrimSpace(req.PONumber); n != "" && n != po.PONumber {
		if h.numberTaken(po.CompanyID, n, po.ID) {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"po_number": "already exists"})
			return
		}
		po.PONumber = n
	}
	po.SupplierName = req.SupplierName
	po.SupplierAddress = req.SupplierAddress
	po.SupplierGSTIN = req.SupplierGSTIN
	po.Date = parseDate(req.Date, po.Date)
	po.BasicPrice = req.BasicPrice
	po.GSTRate = req.GSTRate
	po.Subtotal = totals.Subtotal
	po.GST = totals.GST
	po.Total = totals.Total
	po.Notes = req.Notes

	newItems := make([]models.PurchaseOrderItem, 0, len(items))
	for _, it := range items {
		newItems = append(newItems, models.PurchaseOrderItem{PurchaseOrderID: po.ID, LineItem: it})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", po.ID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		if len(newItems) > 0 {
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		po.Items = nil
		return tx.Omit("Items").Save(po).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update purchase order", nil)
		return
	}
	po.Items = newItems
	httpx.JSON(w, http.StatusOK, po)
}

// Delete: DELETE /api/purchase-orders/delete?id=...
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	po, ok := h.load(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", po.ID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PurchaseOrder{}, po.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete purchase order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: PATCH /api/purchase-orders/status?id=...
func (h *PurchaseOrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w, "PATCH")
		return
	}
	po, ok := h.load(w, r)
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
	if !models.ValidStatus(models.DocPurchaseOrder, status) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed",
			map[string]string{"status": "must be one of: " + strings.Join(models.AllowedStatuses(models.DocPurchaseOrder), ", ")})
		return
	}
	if err := h.DB.Model(&models.PurchaseOrder{}).Where("id = ?", po.ID).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}

// Print: GET /api/purchase-orders/print?id=...
func (h *PurchaseOrderHandler) Print(w http.ResponseWriter, r *http.Request) {
	po, ok := h.load(w, r)
	if !ok {
		return
	}
	var company models.Company
	if err := h.DB.First(&company, po.CompanyID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load company", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"purchase_order":  po,
		"company":         company,
		"amount_in_words": billing.RupeesInWords(po.Total),
	})
}

func (h *PurchaseOrderHandler) load(w http.ResponseWriter, r *http.Request) (*models.PurchaseOrder, bool) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return nil, false
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return nil, false
	}
	var po models.PurchaseOrder
	err := h.DB.Where("company_id = ?", companyID).Preload("Items").First(&po, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "purchase order not found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load purchase order", nil)
		return nil, false
	}
	return &po, true
}

func (h *PurchaseOrderHandler) numberTaken(companyID uint, number string, excludeID uint) bool {
	var cnt int64
	h.DB.Model(&models.PurchaseOrder{}).
		Where("company_id = ? AND po_number = ? AND id <> ?", companyID, number, excludeID).
		Count(&cnt)
	return cnt > 0
}

func (h *PurchaseOrderHandler) nextNumber(companyID uint) string {
	return nextDocNumber(h.DB, &models.PurchaseOrder{}, "po_number", companyID, "PO")
}
