package models

import "time"

// Purchase order sent to a supplier.
type PurchaseOrder struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	CompanyID       uint                `gorm:"not null;index;uniqueIndex:idx_po_company_number" json:"company_id"`
	PONumber        string              `gorm:"size:40;not null;uniqueIndex:idx_po_company_number" json:"po_number"`
	SupplierName    string              `gorm:"not null" json:"supplier_name"`
	SupplierAddress string              `json:"supplier_address"`
	SupplierGSTIN   string              `gorm:"size:15" json:"supplier_gstin"`
	Date            time.Time           `json:"date"`
	Status          string              `gorm:"not null;default:'draft'" json:"status"` // draft, sent, received, cancelled
	Items           []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
	BasicPrice      float64             `json:"basic_price"`
	GSTRate         float64             `json:"gst_rate"`
	Subtotal        float64             `json:"subtotal"`
	GST             float64             `json:"gst"`
	Total           float64             `json:"total"`
	Notes           string              `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint `gorm:"not null;index" json:"purchase_order_id"`
	LineItem        `gorm:"embedded"`
}
