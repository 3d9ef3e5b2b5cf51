package models

import (
	"time"
)

type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description  string    `json:"description"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"` // Ties broken by id ascending
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
