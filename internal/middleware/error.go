package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/domain"
)

// ErrorHandler is the app-level error handler. It translates the shared
// error taxonomy into HTTP statuses so handlers and services can return
// plain errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, domain.ErrValidation):
		code = fiber.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, domain.ErrAuthorization):
		code = fiber.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		code = fiber.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, domain.ErrConflict):
		code = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("unhandled error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
