package models

import "fmt"

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string // "product", "order", "user"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Kind, e.ID)
}

// InsufficientStockError reports an order line that asks for more units
// than the catalog currently holds.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// ValidationError reports malformed or missing request fields the caller
// must correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
