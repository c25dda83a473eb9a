package models

import "time"

// Item is the reusable catalog entry used to prefill document line items.
type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"not null;index" json:"company_id"`
	Description string    `gorm:"not null" json:"description"`
	HSN         string    `gorm:"size:20" json:"hsn"`
	Unit        string    `gorm:"size:20;default:'NOS'" json:"unit"`
	Rate        float64   `json:"rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
