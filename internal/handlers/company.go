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

// CompanyHandler manages the single company settings record per tenant.
type CompanyHandler struct {
	DB       *gorm.DB
	Resolver *tenant.Resolver
}

func NewCompanyHandler(db *gorm.DB, resolver *tenant.Resolver) *CompanyHandler {
	return &CompanyHandler{DB: db, Resolver: resolver}
}

// Settings: GET/PUT /api/company
func (h *CompanyHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut, http.MethodPost:
		h.save(w, r)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (h *CompanyHandler) get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		// Nothing saved yet; the client renders an empty settings form.
		httpx.JSON(w, http.StatusOK, models.Company{})
		return
	}
	var company models.Company
	if err := h.DB.First(&company, companyID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "company not found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) save(w http.ResponseWriter, r *http.Request) {
	var req models.Company
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
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		// First save creates the record.
		req.ID = 0
		if err := h.DB.Create(&req).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed to save company", nil)
			return
		}
		h.Resolver.Invalidate(req.ID)
		httpx.JSON(w, http.StatusCreated, req)
		return
	}
	var company models.Company
	if err := h.DB.First(&company, companyID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "company not found", nil)
		return
	}
	req.ID = company.ID
	req.CreatedAt = company.CreatedAt
	if err := h.DB.Save(&req).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to save company", nil)
		return
	}
	h.Resolver.Invalidate(req.ID)
	httpx.JSON(w, http.StatusOK, req)
}
