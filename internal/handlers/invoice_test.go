package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pavank5214/charan-sub000/internal/models"
)

func TestInvoiceCreateRecomputesTotals(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewInvoiceHandler(dbi)

	// Client-submitted amount and totals are garbage on purpose; the server
	// must replace them with computed values.
	body := fmt.Sprintf(`{
		"client_id": %d,
		"invoice_number": "INV-1001",
		"gst_rate": 18,
		"items": [
			{"description": "Control panel", "qty": 2, "rate": 100, "discount": 10, "amount": 99999},
			{"description": "", "qty": 5, "rate": 50}
		]
	}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var inv models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Empty-description line dropped; one line of 2*100*0.9 = 180.
	if len(inv.Items) != 1 {
		t.Fatalf("expected 1 item after sanitize, got %d", len(inv.Items))
	}
	if inv.Items[0].Amount != 180 {
		t.Fatalf("item amount not recomputed: %v", inv.Items[0].Amount)
	}
	if inv.Subtotal != 180 || inv.GST != 32.4 || inv.Total != 212.4 {
		t.Fatalf("totals wrong: subtotal=%v gst=%v total=%v", inv.Subtotal, inv.GST, inv.Total)
	}
	if inv.Status != "draft" {
		t.Fatalf("new invoice must start as draft, got %q", inv.Status)
	}
}

func TestInvoiceRejectsInvalidBounds(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewInvoiceHandler(dbi)

	body := fmt.Sprintf(`{"client_id": %d, "items": [{"description": "x", "qty": -1, "rate": 10}]}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative qty must be rejected, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "items.0.qty") {
		t.Fatalf("violation should name the offending field: %s", w.Body.String())
	}
}

func TestInvoiceDuplicateNumberRejected(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewInvoiceHandler(dbi)

	body := fmt.Sprintf(`{"client_id": %d, "invoice_number": "INV-7", "items": [{"description": "a", "qty": 1, "rate": 10}]}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: %d %s", w.Code, w.Body.String())
	}
	w = httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate number must 400, got %d", w.Code)
	}
}

func TestInvoiceListScopedToCompany(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	other := models.Company{Name: "Other Works"}
	if err := dbi.Create(&other).Error; err != nil {
		t.Fatalf("other company: %v", err)
	}
	inv := models.Invoice{CompanyID: other.ID, ClientID: client.ID, InvoiceNumber: "X-1", Status: "draft"}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewInvoiceHandler(dbi)

	w := httptest.NewRecorder()
	h.list(w, scopedRequest(http.MethodGet, "/api/invoices", company.ID, ""))
	var resp struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("invoices leaked across companies: %d", resp.Total)
	}

	// The other company cannot fetch by id across the boundary either.
	w = httptest.NewRecorder()
	h.Get(w, scopedRequest(http.MethodGet, fmt.Sprintf("/api/invoices/get?id=%d", inv.ID), company.ID, ""))
	if w.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant get must 404, got %d", w.Code)
	}
}

func TestInvoiceStatusValidation(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-9", Status: "draft"}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewInvoiceHandler(dbi)

	w := httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/invoices/status?id=%d", inv.ID), company.ID, `{"status":"approved"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("approved is not an invoice status, expected 400 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/invoices/status?id=%d", inv.ID), company.ID, `{"status":"SENT"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("sent should be accepted case-insensitively: %d %s", w.Code, w.Body.String())
	}
	var got models.Invoice
	if err := dbi.First(&got, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != "sent" {
		t.Fatalf("status not persisted lowercased: %q", got.Status)
	}
}

func TestInvoiceUpdateReplacesLines(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewInvoiceHandler(dbi)

	body := fmt.Sprintf(`{"client_id": %d, "items": [{"description": "a", "qty": 1, "rate": 100}, {"description": "b", "qty": 1, "rate": 200}]}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var inv models.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &inv)

	update := fmt.Sprintf(`{"client_id": %d, "gst_rate": 18, "items": [{"description": "c", "qty": 3, "rate": 50}]}`, client.ID)
	w = httptest.NewRecorder()
	h.Update(w, scopedRequest(http.MethodPut, fmt.Sprintf("/api/invoices/update?id=%d", inv.ID), company.ID, update))
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var items []models.InvoiceItem
	if err := dbi.Where("invoice_id = ?", inv.ID).Find(&items).Error; err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 || items[0].Description != "c" {
		t.Fatalf("old lines must be replaced, got %+v", items)
	}
	var got models.Invoice
	_ = dbi.First(&got, inv.ID)
	if got.Subtotal != 150 || got.GST != 27 || got.Total != 177 {
		t.Fatalf("totals not recomputed on update: %+v", got)
	}
}

func TestInvoicePrintPayload(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-3", Status: "sent", Total: 212.4}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewInvoiceHandler(dbi)

	w := httptest.NewRecorder()
	h.Print(w, scopedRequest(http.MethodGet, fmt.Sprintf("/api/invoices/print?id=%d", inv.ID), company.ID, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("print: %d %s", w.Code, w.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 212.4 rounds to 212 before wording.
	if payload["amount_in_words"] != "Two Hundred Twelve Rupees Only" {
		t.Fatalf("amount_in_words = %v", payload["amount_in_words"])
	}
	if _, ok := payload["company"]; !ok {
		t.Fatalf("print payload missing company block")
	}
}

func TestInvoiceNumberSurvivesDeletes(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewInvoiceHandler(dbi)

	create := func() models.Invoice {
		t.Helper()
		body := fmt.Sprintf(`{"client_id": %d, "items": [{"description": "a", "qty": 1, "rate": 10}]}`, client.ID)
		w := httptest.NewRecorder()
		h.create(w, scopedRequest(http.MethodPost, "/api/invoices", company.ID, body))
		if w.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", w.Code, w.Body.String())
		}
		var inv models.Invoice
		if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return inv
	}

	first := create()
	second := create()
	if first.InvoiceNumber != "INV-0001" || second.InvoiceNumber != "INV-0002" {
		t.Fatalf("generated numbers: %q %q", first.InvoiceNumber, second.InvoiceNumber)
	}

	w := httptest.NewRecorder()
	h.Delete(w, scopedRequest(http.MethodDelete, fmt.Sprintf("/api/invoices/delete?id=%d", first.ID), company.ID, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	// The freed INV-0001 must not be reissued onto the live INV-0002.
	third := create()
	if third.InvoiceNumber != "INV-0003" {
		t.Fatalf("expected INV-0003 after delete, got %q", third.InvoiceNumber)
	}
}
