package models

import "time"

// Invoicing models. Subtotal/GST/Total are derived from Items, BasicPrice,
// and GSTRate on every save; they are never independently authoritative.
type Invoice struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CompanyID     uint          `gorm:"not null;index;uniqueIndex:idx_invoice_company_number" json:"company_id"`
	ClientID      uint          `gorm:"not null;index" json:"client_id"`
	Client        Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	InvoiceNumber string        `gorm:"size:40;not null;uniqueIndex:idx_invoice_company_number" json:"invoice_number"`
	Date          time.Time     `json:"date"`
	DueDate       time.Time     `json:"due_date"`
	Status        string        `gorm:"not null;default:'draft'" json:"status"` // draft, sent, paid, overdue
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	BasicPrice    float64       `json:"basic_price"` // flat add-on charged before tax
	GSTRate       float64       `json:"gst_rate"`    // percent
	Subtotal      float64       `json:"subtotal"`
	GST           float64       `json:"gst"`
	Total         float64       `json:"total"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"not null;index" json:"invoice_id"`
	LineItem  `gorm:"embedded"`
}
