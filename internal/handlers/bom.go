package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// BOMHandler manages bills of materials. Costing reuses the document
// calculator with a zero tax rate, so a BOM total is just the item sum.
type BOMHandler struct {
	DB *gorm.DB
}

func NewBOMHandler(db *gorm.DB) *BOMHandler {
	return &BOMHandler{DB: db}
}

type bomReq struct {
	BOMNumber string            `json:"bom_number"`
	Name      string            `json:"name"`
	Items     []models.LineItem `json:"items"`
	Notes     string            `json:"notes"`
}

// Collection: GET/POST /api/boms
func (h *BOMHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *BOMHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.BOM{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		dbq = dbq.Where("status = ?", strings.ToLower(s))
	}
	var total int64
	dbq.Model(&models.BOM{}).Count(&total)
	var boms []models.BOM
	if err := dbq.Preload("Items").Order("id desc").Limit(limit).Offset(offset).Find(&boms).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list boms", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": boms, "total": total, "limit": limit, "offset": offset})
}

func (h *BOMHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req bomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	vv := validation.Violations{}
	validation.Required("name", req.Name, vv)
	if !vv.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", vv)
		return
	}
	items, totals, v := prepareItems(req.Items, 0, 0)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	number := strings.TrimSpace(req.BOMNumber)
	if number == "" {
		number = h.nextNumber(companyID)
	} else if h.numberTaken(companyID, number, 0) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"bom_number": "already exists"})
		return
	}
	bom := models.BOM{
		CompanyID: companyID,
		BOMNumber: number,
		Name:      req.Name,
		Status:    models.StatusDraft,
		Subtotal:  totals.Subtotal,
		Total:     totals.Total,
		Notes:     req.Notes,
	}
	for _, it := range items {
		bom.Items = append(bom.Items, models.BOMItem{LineItem: it})
	}
	if err := h.DB.Create(&bom).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create bom", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, bom)
}

// Get: GET /api/boms/get?id=...
func (h *BOMHandler) Get(w http.ResponseWriter, r *http.Request) {
	bom, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, bom)
}

// Update: PUT /api/boms/update?id=...
func (h *BOMHandler) Update(w http.ResponseWriter, r *http.Request) {
	bom, ok := h.load(w, r)
	if !ok {
		return
	}
	var req bomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	vv := validation.Violations{}
	validation.Required("name", req.Name, vv)
	if !vv.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", vv)
		return
	}
	items, totals, v := prepareItems(req.Items, 0, 0)
	if v != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if n := strings.TrimSpace(req.BOMNumber); n != "" && n != bom.BOMNumber {
		if h.numberTaken(bom.CompanyID, n, bom.ID) {
			httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"bom_number": "already exists"})
			return
		}
		bom.BOMNumber = n
	}
	bom.Name = req.Name
	bom.Subtotal = totals.Subtotal
	bom.Total = totals.Total
	bom.Notes = req.Notes

	newItems := make([]models.BOMItem, 0, len(items))
	for _, it := range items {
		newItems = append(newItems, models.BOMItem{BOMID: bom.ID, LineItem: it})
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_id = ?", bom.ID).Delete(&models.BOMItem{}).Error; err != nil {
			return err
		}
		if len(newItems) > 0 {
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		bom.Items = nil
		return tx.Omit("Items").Save(bom).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update bom", nil)
		return
	}
	bom.Items = newItems
	httpx.JSON(w, http.StatusOK, bom)
}

// Delete: DELETE /api/boms/delete?id=...
func (h *BOMHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bom, ok := h.load(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_id = ?", bom.ID).Delete(&models.BOMItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BOM{}, bom.ID).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete bom", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status: PATCH /api/boms/status?id=...
func (h *BOMHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w, "PATCH")
		return
	}
	bom, ok := h.load(w, r)
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
	if !models.ValidStatus(models.DocBOM, status) {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed",
			map[string]string{"status": "must be one of: " + strings.Join(models.AllowedStatuses(models.DocBOM), ", ")})
		return
	}
	if err := h.DB.Model(&models.BOM{}).Where("id = ?", bom.ID).Update("status", status).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *BOMHandler) load(w http.ResponseWriter, r *http.Request) (*models.BOM, bool) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return nil, false
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return nil, false
	}
	var bom models.BOM
	err := h.DB.Where("company_id = ?", companyID).Preload("Items").First(&bom, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "bom not found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load bom", nil)
		return nil, false
	}
	return &bom, true
}

func (h *BOMHandler) numberTaken(companyID uint, number string, excludeID uint) bool {
	var cnt int64
	h.DB.Model(&models.BOM{}).
		Where("company_id = ? AND bom_number = ? AND id <> ?", companyID, number, excludeID).
		Count(&cnt)
	return cnt > 0
}

func (h *BOMHandler) nextNumber(companyID uint) string {
	return nextDocNumber(h.DB, &models.BOM{}, "bom_number", companyID, "BOM")
}
