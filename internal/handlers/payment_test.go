package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pavank5214/charan-sub000/internal/models"
)

func TestPaymentGeneratesReference(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-1", Status: "sent", Total: 1000}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewPaymentHandler(dbi)

	body := fmt.Sprintf(`{"invoice_id": %d, "amount": 400, "mode": "UPI"}`, inv.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/payments", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var p models.Payment
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Reference == "" {
		t.Fatalf("blank reference must be generated")
	}
	if p.Status != "pending" {
		t.Fatalf("payment defaults to pending, got %q", p.Status)
	}
	if p.Mode != "upi" {
		t.Fatalf("mode must be normalized, got %q", p.Mode)
	}
}

func TestVerifiedPaymentsSettleInvoice(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-2", Status: "sent", Total: 1000}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewPaymentHandler(dbi)

	body := fmt.Sprintf(`{"invoice_id": %d, "amount": 600, "mode": "neft", "status": "verified"}`, inv.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/payments", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("first payment: %d %s", w.Code, w.Body.String())
	}
	var got models.Invoice
	_ = dbi.First(&got, inv.ID)
	if got.Status != "sent" {
		t.Fatalf("partial payment must not mark paid, got %q", got.Status)
	}

	body = fmt.Sprintf(`{"invoice_id": %d, "amount": 400, "mode": "neft", "status": "verified"}`, inv.ID)
	w = httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/payments", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("second payment: %d %s", w.Code, w.Body.String())
	}
	_ = dbi.First(&got, inv.ID)
	if got.Status != "paid" {
		t.Fatalf("covering payments must mark invoice paid, got %q", got.Status)
	}
}

func TestPaymentStatusChangeRevertsPaid(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-3", Status: "sent", Total: 500}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewPaymentHandler(dbi)

	body := fmt.Sprintf(`{"invoice_id": %d, "amount": 500, "mode": "cash", "status": "verified"}`, inv.ID)
	w := httptest.NewRecorder()
	h.create(w, scopedRequest(http.MethodPost, "/api/payments", company.ID, body))
	if w.Code != http.StatusCreated {
		t.Fatalf("payment: %d %s", w.Code, w.Body.String())
	}
	var got models.Invoice
	_ = dbi.First(&got, inv.ID)
	if got.Status != "paid" {
		t.Fatalf("expected paid, got %q", got.Status)
	}

	var p models.Payment
	_ = dbi.Where("invoice_id = ?", inv.ID).First(&p)
	w = httptest.NewRecorder()
	h.Status(w, scopedRequest(http.MethodPatch, fmt.Sprintf("/api/payments/status?id=%d", p.ID), company.ID, `{"status":"failed"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
	_ = dbi.First(&got, inv.ID)
	if got.Status != "sent" {
		t.Fatalf("failed payment must revert invoice to sent, got %q", got.Status)
	}
}

func TestPaymentRejectsBadStatusAndAmount(t *testing.T) {
	dbi := setupTestDB(t)
	company, client := seedFixtures(t, dbi)
	inv := models.Invoice{CompanyID: company.ID, ClientID: client.ID, InvoiceNumber: "INV-4", Status: "sent", Total: 100}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	h := NewPaymentHandler(dbi)

	for _, body := range []string{
		fmt.Sprintf(`{"invoice_id": %d, "amount": 0, "mode": "upi"}`, inv.ID),
		fmt.Sprintf(`{"invoice_id": %d, "amount": 50, "mode": "upi", "status": "draft"}`, inv.ID),
		`{"amount": 50, "mode": "upi"}`,
	} {
		w := httptest.NewRecorder()
		h.create(w, scopedRequest(http.MethodPost, "/api/payments", company.ID, body))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, w.Code)
		}
	}
}
