package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/service/auth"
)

const (
	localsUserKey   = "current_user"
	localsUserIDKey = "current_user_id"
)

// AuthRequired validates the bearer token and loads the account behind it
// into request locals. Deactivated accounts fail even with a valid token.
func AuthRequired(authSvc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed authorization header")
		}

		claims, err := authSvc.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		user, err := authSvc.GetUserByID(c.Context(), claims.UserID)
		if err != nil {
			return err
		}
		if user == nil || !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "account is no longer active")
		}

		c.Locals(localsUserKey, user)
		c.Locals(localsUserIDKey, user.ID)
		return c.Next()
	}
}

func GetCurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(localsUserKey).(*domain.User)
	return user
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localsUserIDKey).(uuid.UUID)
	return id
}
