package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout. Anything other than cash on
// delivery is treated as collected up front.
const (
	PaymentMethodCOD        = "cod"
	PaymentMethodCard       = "card"
	PaymentMethodUPI        = "upi"
	PaymentMethodNetbanking = "netbanking"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is a line-item snapshot taken at purchase time. Price and the
// display fields are copied from the product so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	Emoji     string          `json:"emoji"`
	Unit      string          `json:"unit"`
}

// Order is a customer order. User name/phone/address are denormalized at
// creation so the order survives later account edits. Total is fixed at
// creation; Status and PaymentStatus are the only mutable fields.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"user_id" gorm:"index;type:varchar(36)"`
	UserName      string          `json:"user_name"`
	UserPhone     string          `json:"user_phone"`
	UserAddress   string          `json:"user_address"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2)"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(20);default:cod"`
	PaymentStatus string          `json:"payment_status" gorm:"type:varchar(20);default:pending"`
	Status        string          `json:"status" gorm:"type:varchar(20);default:pending"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsValidPaymentMethod reports whether method is one of the accepted
// payment methods.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetbanking:
		return true
	}
	return false
}

// IsValidOrderStatus reports whether status is one of the four order states.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DerivePaymentStatus maps a payment method to the initial payment status:
// cash on delivery stays pending until handover, everything else starts
// completed.
func DerivePaymentStatus(method string) string {
	if method == PaymentMethodCOD {
		return PaymentStatusPending
	}
	return PaymentStatusCompleted
}
