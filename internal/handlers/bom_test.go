package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pavank5214/charan-sub000/internal/models"
)

func TestBOMCostingHasNoTax(t *testing.T) {
	dbi := setupTestDB(t)
	company, _ := seedFixtures(t, dbi)
	h := NewBOMHandler(dbi)

	// Unpriced components stay on the BOM and contribute zero.
	body := `{
		"name": "Control Panel MK-II",
		"items": [
			{"description": "Relay", "make": "Schneider", "qty": 4, "rate": 250},
			{"description": "Wiring loom", "qty": 1, "rate": 0}
		]
	}`
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/boms", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var bom models.BOM
	if err := json.Unmarshal(w.Body.Bytes(), &bom); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(bom.Items) != 2 {
		t.Fatalf("unpriced line must be kept, got %d items", len(bom.Items))
	}
	if bom.Subtotal != 1000 || bom.Total != 1000 {
		t.Fatalf("bom costing must carry no tax: subtotal=%v total=%v", bom.Subtotal, bom.Total)
	}
	if bom.CompanyID != company.ID {
		t.Fatalf("bom must be company scoped")
	}
}

func TestBOMStatusLifecycle(t *testing.T) {
	dbi := setupTestDB(t)
	company, _ := seedFixtures(t, dbi)
	bom := models.BOM{CompanyID: company.ID, BOMNumber: "BOM-1", Name: "Panel", Status: "draft"}
	if err := dbi.Create(&bom).Error; err != nil {
		t.Fatalf("bom: %v", err)
	}
	h := NewBOMHandler(dbi)

	for _, status := range []string{"approved", "in-production", "completed"} {
		w := httptest.NewRecorder()
		h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/boms/status?id=%d", bom.ID), company.ID, fmt.Sprintf(`{"status":%q}`, status)))
		if w.Code != http.StatusOK {
			t.Fatalf("status %q: %d %s", status, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/boms/status?id=%d", bom.ID), company.ID, `{"status":"sent"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("sent is not a bom status, got %d", w.Code)
	}
}

func TestBOMScopedAcrossCompanies(t *testing.T) {
	dbi := setupTestDB(t)
	company, _ := seedFixtures(t, dbi)
	other := models.Company{Name: "Other Works"}
	if err := dbi.Create(&other).Error; err != nil {
		t.Fatalf("other: %v", err)
	}
	bom := models.BOM{CompanyID: other.ID, BOMNumber: "BOM-X", Name: "Theirs", Status: "draft"}
	if err := dbi.Create(&bom).Error; err != nil {
		t.Fatalf("bom: %v", err)
	}
	h := NewBOMHandler(dbi)

	w := httptest.NewRecorder()
	h.Get(w, scopedRequest(http.MethodGet, fmt.Sprintf("/api/boms/get?id=%d", bom.ID), company.ID, ""))
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant bom access must 404, got %d", w.Code)
	}
}
