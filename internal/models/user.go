// Package models holds the GORM rows and API error types shared by the
// repositories, services and handlers.
package models

import (
	"time"

	"gorm.io/gorm"
)

// RoleMember is stored for accounts created without an explicit role.
const RoleMember = "member"

// User is an account known to the auth provider; ID is the provider uid.
// PasswordHash is only set for accounts created by the local auth proxy.
type User struct {
	ID           string         `gorm:"primaryKey;size:128" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `json:"name"`
	Role         string         `gorm:"size:32;not null;default:'member'" json:"role"`
	PasswordHash string         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
