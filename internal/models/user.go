package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a customer account. The verification fields hold the
// one-time email code between send-otp and verify-otp.
type User struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                string    `json:"name" validate:"required,min=2,max=100"`
	Email               string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Phone               string    `json:"phone" gorm:"uniqueIndex;type:varchar(20)" validate:"required,len=10,numeric"`
	Address             string    `json:"address" validate:"omitempty,max=500"`
	Password            string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role                string    `json:"role" gorm:"type:varchar(20);default:customer"`
	Verified            bool      `json:"verified"`
	VerifyCode          string    `json:"-" gorm:"type:varchar(10)"`
	VerifyCodeExpiresAt time.Time `json:"-"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
