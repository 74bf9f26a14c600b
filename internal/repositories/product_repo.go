package repositories

import (
	"github.com/Harshi-1401/quickmart-backend/internal/models"
)

// ProductRepository defines the interface for product data access.
// DecrementStock and IncrementStock exist so order assembly can reserve
// and release stock without a read-modify-write race.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// DecrementStock atomically applies `stock -= quantity` only when
	// `stock >= quantity`, reporting whether the decrement applied.
	DecrementStock(id string, quantity int) (bool, error)
	// IncrementStock returns previously reserved units to stock.
	IncrementStock(id string, quantity int) error
}
