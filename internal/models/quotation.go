package models

import "time"

// Quotation / estimate models. Shares the invoice totals pipeline so the
// two document types can never drift on displayed amounts.
type Quotation struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CompanyID       uint            `gorm:"not null;index;uniqueIndex:idx_quotation_company_number" json:"company_id"`
	ClientID        uint            `gorm:"not null;index" json:"client_id"`
	Client          Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	QuotationNumber string          `gorm:"size:40;not null;uniqueIndex:idx_quotation_company_number" json:"quotation_number"`
	Date            time.Time       `json:"date"`
	ValidUntil      time.Time       `json:"valid_until"`
	Status          string          `gorm:"not null;default:'draft'" json:"status"` // draft, sent, approved, accepted, rejected, converted
	Subject         string          `json:"subject"`
	Intro           string          `json:"intro"`
	Terms           string          `json:"terms"`
	Items           []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
	BasicPrice      float64         `json:"basic_price"`
	GSTRate         float64         `json:"gst_rate"`
	Subtotal        float64         `json:"subtotal"`
	GST             float64         `json:"gst"`
	Total           float64         `json:"total"`
	// Set once the quotation is converted into an invoice.
	ConvertedInvoiceID uint      `json:"converted_invoice_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type QuotationItem struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	QuotationID uint `gorm:"not null;index" json:"quotation_id"`
	LineItem    `gorm:"embedded"`
}
