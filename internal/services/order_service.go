package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/repositories"
)

// OrderEventPublisher publishes order lifecycle events. A nil publisher is
// allowed; events are then skipped.
type OrderEventPublisher interface {
	PublishOrderEvent(routingKey string, payload map[string]interface{}) error
}

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderService handles order assembly and status updates.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   OrderEventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// reservation is one staged stock decrement, keyed by product. Multiple
// request lines for the same product are consolidated into one.
type reservation struct {
	productID string
	name      string
	quantity  int
}

// CreateOrder assembles and persists an order for the given user.
//
// Assembly runs in two phases. First every requested line is validated
// against live stock and snapshotted (name, price, emoji, unit at this
// instant); any missing product or short stock aborts the call before
// anything is written. Only then are the stock decrements committed, each
// as an atomic conditional decrement. A commit-phase miss (a concurrent
// order won the race) rolls back the decrements already applied in this
// call, so a failed assembly never leaves stock reserved and never
// creates an order.
func (s *OrderService) CreateOrder(user *models.User, items []OrderItemRequest, paymentMethod string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, &models.ValidationError{Message: "at least one item is required"}
	}
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	if !models.IsValidPaymentMethod(paymentMethod) {
		return nil, &models.ValidationError{Message: fmt.Sprintf("invalid payment method: %s", paymentMethod)}
	}

	// Phase 1: validate every line and build the snapshots.
	total := decimal.Zero
	var orderItems []models.OrderItem
	var reservations []*reservation
	reserved := make(map[string]*reservation)

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &models.ValidationError{Message: fmt.Sprintf("quantity for product %s must be at least 1", item.ProductID)}
		}

		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}

		res, ok := reserved[product.ID]
		if !ok {
			res = &reservation{productID: product.ID, name: product.Name}
			reserved[product.ID] = res
			reservations = append(reservations, res)
		}
		// Lines for the same product count against stock together.
		if product.Stock < res.quantity+item.Quantity {
			return nil, &models.InsufficientStockError{
				ProductName: product.Name,
				Requested:   res.quantity + item.Quantity,
				Available:   product.Stock,
			}
		}
		res.quantity += item.Quantity

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Emoji:     product.Emoji,
			Unit:      product.Unit,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Phase 2: commit the decrements. Roll back on a miss so stock is
	// never left partially reserved.
	if err := s.commitReservations(reservations); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		UserName:      user.Name,
		UserPhone:     user.Phone,
		UserAddress:   user.Address,
		Items:         orderItems,
		Total:         total,
		PaymentMethod: paymentMethod,
		PaymentStatus: models.DerivePaymentStatus(paymentMethod),
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.releaseReservations(reservations)
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.Total.String(),
	})

	return order, nil
}

// commitReservations applies each staged decrement. A miss means another
// order drained the stock between validation and commit; everything
// applied so far is released and the call fails.
func (s *OrderService) commitReservations(reservations []*reservation) error {
	for i, res := range reservations {
		applied, err := s.productRepo.DecrementStock(res.productID, res.quantity)
		if err != nil {
			s.releaseReservations(reservations[:i])
			return fmt.Errorf("failed to reserve stock for %s: %w", res.name, err)
		}
		if !applied {
			s.releaseReservations(reservations[:i])
			available := 0
			if product, lookupErr := s.productRepo.GetByID(res.productID); lookupErr == nil {
				available = product.Stock
			}
			return &models.InsufficientStockError{
				ProductName: res.name,
				Requested:   res.quantity,
				Available:   available,
			}
		}
	}
	return nil
}

func (s *OrderService) releaseReservations(reservations []*reservation) {
	for _, res := range reservations {
		if err := s.productRepo.IncrementStock(res.productID, res.quantity); err != nil {
			log.Printf("Failed to release %d reserved units of product %s: %v", res.quantity, res.productID, err)
		}
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersForUser retrieves one user's orders, newest first.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus sets the status of an existing order and returns the
// updated order. Any of the four order states may be set from any other;
// the endpoint doubles as a manual override for support staff. Payment
// status is never touched here.
func (s *OrderService) UpdateOrderStatus(id string, status string) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, &models.ValidationError{Message: fmt.Sprintf("invalid order status: %s", status)}
	}

	order, err := s.orderRepo.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"orderID": order.ID,
		"status":  order.Status,
	})

	return order, nil
}

// publishEvent emits an order lifecycle event. Publishing is best-effort:
// a broker outage must not fail the customer's request.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
