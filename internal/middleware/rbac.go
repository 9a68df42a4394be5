package middleware

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
)

// RequireRole admits only the listed roles. It must run after AuthRequired.
func RequireRole(roles ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}
