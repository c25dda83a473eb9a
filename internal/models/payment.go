package models

import "time"

// Payment recorded against an invoice.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	InvoiceID uint      `gorm:"not null;index" json:"invoice_id"`
	Date      time.Time `gorm:"not null" json:"date"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Mode      string    `gorm:"not null" json:"mode"` // e.g. upi, neft, cheque, cash
	Status    string    `gorm:"not null;default:'pending'" json:"status"` // verified, pending, failed
	Reference string    `gorm:"size:60;index" json:"reference"` // generated when blank
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
