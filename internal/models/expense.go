package models

import "time"

// Expense entry for the reports screens.
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CompanyID   uint      `gorm:"not null;index" json:"company_id"`
	Description string    `gorm:"not null" json:"description"`
	Category    string    `gorm:"size:60;index" json:"category"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
