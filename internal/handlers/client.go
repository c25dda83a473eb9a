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

// ClientHandler manages the customer directory.
type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{DB: db}
}

// Collection: GET/POST /api/clients
func (h *ClientHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Client{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(gstin) LIKE ?", like, like)
	}
	var total int64
	dbq.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := dbq.Order("name").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req models.Client
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	req.ID = 0
	req.CompanyID = companyID
	if err := h.DB.Create(&req).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to create client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

// Get: GET /api/clients/get?id=...
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Where("company_id = ?", companyID).First(&client, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "client not found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /api/clients/update?id=...
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Where("company_id = ?", companyID).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "client not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to load client", nil)
		return
	}
	var req models.Client
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	req.ID = client.ID
	req.CompanyID = client.CompanyID
	req.CreatedAt = client.CreatedAt
	if err := h.DB.Save(&req).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

// Delete: DELETE /api/clients/delete?id=...
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Where("company_id = ?", companyID).First(&client, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "client not found", nil)
		return
	}
	// Block deletion while documents still reference the client.
	var cnt int64
	h.DB.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&cnt)
	if cnt > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "client has invoices", nil)
		return
	}
	if err := h.DB.Delete(&client).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
