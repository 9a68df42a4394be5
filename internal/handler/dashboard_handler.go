package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/service/dashboard"
)

type DashboardHandler struct {
	dashSvc dashboard.Service
}

func NewDashboardHandler(dashSvc dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashSvc: dashSvc}
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashSvc.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
