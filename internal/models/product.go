package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog product. Stock is the live available
// quantity; orders reserve it through the repository's conditional
// decrement, never by writing the field directly.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Emoji       string          `json:"emoji" gorm:"type:varchar(8)"`
	Unit        string          `json:"unit" gorm:"type:varchar(20)"`
	gorm.Model  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
