package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/services"
)

// UserLocalKey is the Fiber locals key under which AuthRequired stores the
// authenticated *models.User.
const UserLocalKey = "user"

// AuthRequired is a Fiber middleware that checks for a valid JWT token and
// loads the full principal (id, name, phone, address, role) into locals so
// handlers like order creation can denormalize user fields.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		userID, _ := claims["userId"].(string)
		user, err := authService.GetUserByID(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Account no longer exists",
			})
		}

		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

// AdminRequired gates a route to admin accounts. Must run after
// AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserLocalKey).(*models.User)
		if !ok || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}
