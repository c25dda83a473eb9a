package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/billing"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/tenant"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// nextDocNumber generates the next document number for a company as
// prefix + a zero-padded sequence. It takes the highest numeric suffix
// already present rather than the row count, so numbers freed by deletes
// are never reissued onto the unique index.
func nextDocNumber(dbi *gorm.DB, model any, column string, companyID uint, prefix string) string {
	var numbers []string
	dbi.Model(model).Where("company_id = ?", companyID).Pluck(column, &numbers)
	highest := 0
	for _, number := range numbers {
		suffix := number
		if i := strings.LastIndex(suffix, "-"); i >= 0 {
			suffix = suffix[i+1:]
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, highest+1)
}

// idParam reads the ?id= query parameter shared by the get/update/delete
// sub-routes.
func idParam(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// companyScope resolves the tenant for a scoped handler, writing the error
// response itself when no company is configured yet.
func companyScope(w http.ResponseWriter, r *http.Request) (uint, bool) {
	companyID, ok := tenant.CompanyIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "company not configured", nil)
		return 0, false
	}
	return companyID, true
}

// pagination returns limit/offset from ?limit= and ?page=.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// prepareItems runs the full line-item pipeline: drop empty descriptions,
// enforce bounds, recompute amounts and totals. Client-submitted amount/
// subtotal/gst/total values never survive this call.
func prepareItems(items []models.LineItem, basicPrice, gstRate float64) ([]models.LineItem, billing.Totals, validation.Violations) {
	clean := billing.SanitizeItems(items)
	if v := billing.ValidateItems(clean, basicPrice, gstRate); !v.Empty() {
		return nil, billing.Totals{}, v
	}
	annotated, totals := billing.ComputeTotals(clean, basicPrice, gstRate)
	return annotated, totals, nil
}

// parseDate accepts "2006-01-02" or RFC 3339; anything else keeps fallback.
func parseDate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return fallback
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
}
