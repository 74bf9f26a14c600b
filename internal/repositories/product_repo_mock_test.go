package repositories_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/repositories"
)

func TestMockProductRepository_DecrementStock(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	product := &models.Product{ID: "prod-a", Name: "Banana", Price: decimal.NewFromFloat(2.00), Stock: 5}
	assert.NoError(t, repo.Create(product))

	applied, err := repo.DecrementStock("prod-a", 3)
	assert.NoError(t, err)
	assert.True(t, applied)

	// Not enough left: the decrement must not apply, not even partially.
	applied, err = repo.DecrementStock("prod-a", 3)
	assert.NoError(t, err)
	assert.False(t, applied)

	got, _ := repo.GetByID("prod-a")
	assert.Equal(t, 2, got.Stock)

	// Unknown product behaves like a failed condition.
	applied, err = repo.DecrementStock("prod-x", 1)
	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestMockProductRepository_ConcurrentDecrementsNeverGoNegative(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	assert.NoError(t, repo.Create(&models.Product{ID: "prod-a", Name: "Banana", Stock: 10}))

	var wg sync.WaitGroup
	appliedCount := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := repo.DecrementStock("prod-a", 1)
			assert.NoError(t, err)
			appliedCount <- applied
		}()
	}
	wg.Wait()
	close(appliedCount)

	applied := 0
	for ok := range appliedCount {
		if ok {
			applied++
		}
	}
	assert.Equal(t, 10, applied, "exactly the available stock may be reserved")

	got, _ := repo.GetByID("prod-a")
	assert.Equal(t, 0, got.Stock)
}

func TestMockOrderRepository_ListingsNewestFirst(t *testing.T) {
	repo := repositories.NewMockOrderRepository()

	older := &models.Order{UserID: "user-1"}
	assert.NoError(t, repo.Create(older))
	time.Sleep(2 * time.Millisecond)
	newer := &models.Order{UserID: "user-1"}
	assert.NoError(t, repo.Create(newer))

	all, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	mine, err := repo.GetByUserID("user-1")
	assert.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)

	none, err := repo.GetByUserID("user-2")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestMockOrderRepository_UpdateStatus(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	order := &models.Order{UserID: "user-1", Status: models.OrderStatusPending}
	assert.NoError(t, repo.Create(order))

	updated, err := repo.UpdateStatus(order.ID, models.OrderStatusDelivered)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	_, err = repo.UpdateStatus("no-such-order", models.OrderStatusDelivered)
	var notFoundErr *models.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
