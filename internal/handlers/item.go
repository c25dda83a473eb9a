package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// ItemHandler manages the reusable item catalog that pre-fills document lines.
type ItemHandler struct {
	DB *gorm.DB
}

func NewItemHandler(db *gorm.DB) *ItemHandler {
	return &ItemHandler{DB: db}
}

// Collection: GET/POST /api/items
func (h *ItemHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *ItemHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Item{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(description) LIKE ? OR lower(hsn) LIKE ?", like, like)
	}
	var total int64
	dbq.Model(&models.Item{}).Count(&total)
	var items []models.Item
	if err := dbq.Order("description").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list items", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

func (h *ItemHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req models.Item
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	v := validation.Violations{}
	validation.Required("description", req.Description, v)
	validation.NonNegative("rate", req.Rate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if req.Unit == "" {
		req.Unit = "NOS"
	}
	req.ID = 0
	req.CompanyID = companyID
	if err := h.DB.Create(&req).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create item", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

// Update: PUT /api/items/update?id=...
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var item models.Item
	if err := h.DB.Where("company_id = ?", companyID).First(&item, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "item not found", nil)
		return
	}
	var req models.Item
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	v := validation.Violations{}
	validation.Required("description", req.Description, v)
	validation.NonNegative("rate", req.Rate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	if req.Unit == "" {
		req.Unit = "NOS"
	}
	req.ID = item.ID
	req.CompanyID = item.CompanyID
	req.CreatedAt = item.CreatedAt
	if err := h.DB.Save(&req).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update item", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

// Delete: DELETE /api/items/delete?id=...
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	res := h.DB.Where("company_id = ?", companyID).Delete(&models.Item{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete item", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "item not found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
