package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pavank5214/charan-sub000/internal/models"
)

func TestQuotationCreateUsesCompanyDefaults(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	company.QuotationSubject = "Supply of electrical panels"
	company.QuotationTerms = "Payment within 30 days"
	if err := dbi.Save(&company).Error; err != nil {
		t.Fatalf("company: %v", err)
	}
	h := NewQuotationHandler(dbi)

	body := fmt.Sprintf(`{"client_id": %d, "gst_rate": 18, "items": [{"description": "Panel", "qty": 1, "rate": 1000}]}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/quotations", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var qt models.Quotation
	if err := json.Unmarshal(w.Body.Bytes(), &qt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if qt.Subject != "Supply of electrical panels" || qt.Terms != "Payment within 30 days" {
		t.Fatalf("blank subject/terms must fall back to company defaults: %+v", qt)
	}
	if qt.QuotationNumber == "" {
		t.Fatalf("quotation number must be generated when blank")
	}
	if qt.Subtotal != 1000 || qt.GST != 180 || qt.Total != 1180 {
		t.Fatalf("totals wrong: %+v", qt)
	}
}

func TestQuotationConvertOnce(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	h := NewQuotationHandler(dbi)

	body := fmt.Sprintf(`{"client_id": %d, "gst_rate": 18, "items": [{"description": "Panel", "qty": 2, "rate": 500}]}`, client.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/quotations", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var qt models.Quotation
	_ = json.Unmarshal(w.Body.Bytes(), &qt)

	w = httptest.NewRecorder()
	h.Convert(w, scopedRequest(http.MethodPost, fmt.Sprintf("/api/quotations/convert?id=%d", qt.ID), company.ID, ""))
	if w.Code != http.StatusCreated {
		t.Fatalf("convert: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		InvoiceID uint `json:"invoice_id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.InvoiceID == 0 {
		t.Fatalf("convert must return the new invoice id")
	}
	var inv models.Invoice
	if err := dbi.Preload("Items").First(&inv, resp.InvoiceID).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if inv.Total != 1180 || inv.Status != "draft" {
		t.Fatalf("converted invoice wrong: total=%v status=%q", inv.Total, inv.Status)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("lines must be copied, got %d", len(inv.Items))
	}
	var got models.Quotation
	_ = dbi.First(&got, qt.ID)
	if got.Status != "converted" || got.ConvertedInvoiceID != inv.ID {
		t.Fatalf("quotation not marked converted: %+v", got)
	}

	// Second convert must be rejected.
	w = httptest.NewRecorder()
	h.Convert(w, scopedRequest(http.MethodPost, fmt.Sprintf("/api/quotations/convert?id=%d", qt.ID), company.ID, ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second convert must 400, got %d", w.Code)
	}
}

func TestQuotationPrintWordsVariant(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	qt := models.Quotation{CompanyID: company.ID, ClientID: client.ID, QuotationNumber: "QTN-1", Status: "sent", Total: 1180}
	if err := dbi.Create(&qt).Error; err != nil {
		t.Fatalf("quotation: %v", err)
	}
	h := NewQuotationHandler(dbi)

	w := httptest.NewRecorder()
	h.Print(w, scopedRequest(http.MethodGet, fmt.Sprintf("/api/quotations/print?id=%d", qt.ID), company.ID, ""))
	if w.Code != http.StatusOK {
		t.Fatalf("print: %d %s", w.Code, w.Body.String())
	}
	var payload map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &payload)
	// Quotations use the bare "Only" suffix, not "Rupees Only".
	if payload["amount_in_words"] != "One Thousand One Hundred Eighty Only" {
		t.Fatalf("amount_in_words = %v", payload["amount_in_words"])
	}
}

func TestQuotationStatusSet(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	qt := models.Quotation{CompanyID: company.ID, ClientID: client.ID, QuotationNumber: "QTN-2", Status: "draft"}
	if err := dbi.Create(&qt).Error; err != nil {
		t.Fatalf("quotation: %v", err)
	}
	h := NewQuotationHandler(dbi)

	// paid belongs to invoices, not quotations
	w := httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/quotations/status?id=%d", qt.ID), company.ID, `{"status":"paid"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("paid must be rejected for quotations, got %d", w.Code)
	}

	// converted is set by the convert operation only
	w = httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/quotations/status?id=%d", qt.ID), company.ID, `{"status":"converted"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("converted must not be settable directly, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/quotations/status?id=%d", qt.ID), company.ID, `{"status":"accepted"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("accepted: %d %s", w.Code, w.Body.String())
	}
}
