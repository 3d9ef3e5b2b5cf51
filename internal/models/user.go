package models

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"` // Login ID, immutable after signup
	Password  string    `gorm:"not null" json:"-"`                        // bcrypt hash
	Email     string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Role      string    `gorm:"size:20;default:'USER';not null" json:"role"` // USER, ADMIN
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt, deletes are hard
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
