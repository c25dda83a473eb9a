package models

import (
	"time"

	"gorm.io/datatypes"
)

// Company holds the owning organization record: branding, tax identity,
// bank details, and default text blocks reused on printed documents.
// Single-tenant deployments carry exactly one row.
type Company struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null;index" json:"name"`
	Address string `json:"address"`
	Phone   string `gorm:"size:20" json:"phone"`
	Email   string `json:"email"`
	GSTIN   string `gorm:"size:15;index" json:"gstin"`
	LogoURL string `json:"logo_url"`

	// Bank details printed on invoices
	BankName      string `json:"bank_name"`
	AccountNumber string `gorm:"size:30" json:"account_number"`
	IFSC          string `gorm:"size:15" json:"ifsc"`
	Branch        string `json:"branch"`

	// Default text blocks
	PaymentTerms     string `json:"payment_terms"`
	QuotationSubject string `json:"quotation_subject"`
	QuotationIntro   string `json:"quotation_intro"`
	QuotationTerms   string `json:"quotation_terms"`

	Metadata datatypes.JSONMap `json:"metadata"` // misc branding extras

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
