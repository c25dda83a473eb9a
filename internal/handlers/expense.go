package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// ExpenseHandler records business expenses surfaced on the dashboard.
type ExpenseHandler struct {
	DB *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{DB: db}
}

type expenseReq struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes"`
}

// Collection: GET/POST /api/expenses
func (h *ExpenseHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (h *ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": []models.Expense{}, "total": 0})
		return
	}
	limit, offset := pagination(r)
	dbq := h.DB.Where("company_id = ?", companyID)
	if c := strings.TrimSpace(r.URL.Query().Get("category")); c != "" {
		dbq = dbq.Where("category = ?", c)
	}
	var total int64
	dbq.Model(&models.Expense{}).Count(&total)
	var expenses []models.Expense
	if err := dbq.Order("date desc, id desc").Limit(limit).Offset(offset).Find(&expenses).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to list expenses", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "total": total, "limit": limit, "offset": offset})
}

func (h *ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	var req expenseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	v := validation.Violations{}
	validation.Required("description", req.Description, v)
	validation.PositiveFloat("amount", req.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	expense := models.Expense{
		CompanyID:   companyID,
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Date:        parseDate(req.Date, time.Now()),
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to record expense", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

// Update: PUT /api/expenses/update?id=...
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var expense models.Expense
	if err := h.DB.Where("company_id = ?", companyID).First(&expense, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "expense not found", nil)
		return
	}
	var req expenseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	v := validation.Violations{}
	validation.Required("description", req.Description, v)
	validation.PositiveFloat("amount", req.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	expense.Description = req.Description
	expense.Category = strings.TrimSpace(req.Category)
	expense.Amount = req.Amount
	expense.Date = parseDate(req.Date, expense.Date)
	expense.Notes = req.Notes
	if err := h.DB.Save(&expense).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to update expense", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

// Delete: DELETE /api/expenses/delete?id=...
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyScope(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	res := h.DB.Where("company_id = ?", companyID).Delete(&models.Expense{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to delete expense", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "expense not found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
