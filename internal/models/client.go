package models

import "time"

// Client entity, scoped to the owning company.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"not null;index" json:"company_id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Contact   string    `json:"contact"` // primary contact person
	Email     string    `json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `json:"address"`
	GSTIN     string    `gorm:"size:15;index" json:"gstin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
