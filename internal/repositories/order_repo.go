package repositories

import (
	"github.com/Harshi-1401/quickmart-backend/internal/models"
)

// OrderRepository defines the interface for order data access. Listings
// return orders newest first.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus persists the new status and returns the updated order.
	UpdateStatus(id string, status string) (*models.Order, error)
	// Deletion of orders is intentionally not supported.
}
