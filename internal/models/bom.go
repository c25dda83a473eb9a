package models

import "time"

// Bill of materials. Components are identified by make/description and
// pricing is optional (rate 0 keeps the line, costing just contributes 0).
// Scoped by company id like every other resource.
type BOM struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"not null;index;uniqueIndex:idx_bom_company_number" json:"company_id"`
	BOMNumber string    `gorm:"size:40;not null;uniqueIndex:idx_bom_company_number" json:"bom_number"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"not null;default:'draft'" json:"status"` // draft, approved, in-production, completed
	Items     []BOMItem `gorm:"foreignKey:BOMID;constraint:OnDelete:CASCADE" json:"items"`
	// Costing runs the shared calculator with a zero tax rate.
	Subtotal  float64   `json:"subtotal"`
	Total     float64   `json:"total"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BOMItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BOMID    uint `gorm:"not null;index" json:"bom_id"`
	LineItem `gorm:"embedded"`
}
