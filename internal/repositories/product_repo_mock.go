package repositories

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// Its stock operations honor the same conditional-decrement contract as the
// GORM implementation.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: "product", ID: id}
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return &models.NotFoundError{Kind: "product", ID: product.ID}
	}
	r.products[product.ID] = *product
	return nil
}

// DecrementStock applies the decrement only if enough stock remains,
// mirroring the single-statement UPDATE of the GORM repository.
func (r *MockProductRepository) DecrementStock(id string, quantity int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	r.products[id] = product
	return true, nil
}

// IncrementStock returns quantity units to a product's stock.
func (r *MockProductRepository) IncrementStock(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &models.NotFoundError{Kind: "product", ID: id}
	}
	product.Stock += quantity
	r.products[id] = product
	return nil
}
