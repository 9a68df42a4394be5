package middleware

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
)

// RequestMeta captures the caller's address and agent for audit rows.
func RequestMeta(c *fiber.Ctx) domain.RequestMeta {
	ip := c.IP()
	userAgent := c.Get(fiber.HeaderUserAgent)

	meta := domain.RequestMeta{}
	if ip != "" {
		meta.IPAddress = &ip
	}
	if userAgent != "" {
		meta.UserAgent = &userAgent
	}
	return meta
}
