package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Harshi-1401/quickmart-backend/internal/middleware"
	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. All order routes require
// authentication; listing everything and updating status additionally
// require the admin role.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/my-orders", h.HandleGetMyOrders)
	orderRoutes.Get("/", admin, h.HandleGetAllOrders)
	orderRoutes.Put("/:id/status", admin, h.HandleUpdateOrderStatus)
}

// createOrderItem accepts the product reference under either key the
// client may send.
type createOrderItem struct {
	ProductID string `json:"productId"`
	ID        string `json:"id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items       []createOrderItem `json:"items"`
	PaymentData *struct {
		Method string `json:"method"`
	} `json:"paymentData"`
}

// HandleCreateOrder places a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	user := c.Locals(middleware.UserLocalKey).(*models.User)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "At least one item is required for an order.",
		})
	}

	items := make([]services.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID := item.ProductID
		if productID == "" {
			productID = item.ID
		}
		items = append(items, services.OrderItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	paymentMethod := ""
	if req.PaymentData != nil {
		paymentMethod = req.PaymentData.Method
	}

	order, err := h.service.CreateOrder(user, items, paymentMethod)
	if err != nil {
		var validationErr *models.ValidationError
		var notFoundErr *models.NotFoundError
		var stockErr *models.InsufficientStockError
		switch {
		case errors.As(err, &validationErr), errors.As(err, &notFoundErr), errors.As(err, &stockErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		default:
			log.Printf("Error creating order for user %s: %v", user.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not create order",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	user := c.Locals(middleware.UserLocalKey).(*models.User)

	orders, err := h.service.GetOrdersForUser(user.ID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetAllOrders returns every order, newest first. Admin only.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus sets the status of an existing order. Admin only.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.service.UpdateOrderStatus(orderID, updateData.Status)
	if err != nil {
		var validationErr *models.ValidationError
		var notFoundErr *models.NotFoundError
		switch {
		case errors.As(err, &notFoundErr):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		default:
			log.Printf("Error updating order status for order %s: %v", orderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not update order status",
				"error":   err.Error(),
			})
		}
	}

	return c.JSON(order)
}
