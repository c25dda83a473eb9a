package models

// LineItem is the shared shape of a billable line across invoices,
// quotations, BOMs, and purchase orders. Amount is derived server-side
// (qty * rate * (1 - discount/100)) and never trusted from the client.
type LineItem struct {
	Description string  `gorm:"not null" json:"description"`
	HSN         string  `gorm:"size:20" json:"hsn,omitempty"`
	Make        string  `gorm:"size:60" json:"make,omitempty"`
	Qty         float64 `json:"qty"`
	Unit        string  `gorm:"size:20;default:'NOS'" json:"unit"`
	Rate        float64 `json:"rate"`
	Discount    float64 `json:"discount"` // percent, 0..100
	Amount      float64 `json:"amount"`
}
