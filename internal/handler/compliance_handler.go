package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/compliance"
)

type ComplianceHandler struct {
	compSvc compliance.Service
}

func NewComplianceHandler(compSvc compliance.Service) *ComplianceHandler {
	return &ComplianceHandler{compSvc: compSvc}
}

func (h *ComplianceHandler) Record(c *fiber.Ctx) error {
	articleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	departmentID, err := parseUUIDParam(c, "departmentId")
	if err != nil {
		return err
	}

	var input domain.RecordComplianceInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cs, err := h.compSvc.Record(c.Context(), middleware.GetCurrentUser(c), articleID, departmentID, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(cs)
}

func (h *ComplianceHandler) ListByArticle(c *fiber.Ctx) error {
	articleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	statuses, err := h.compSvc.ListByArticle(c.Context(), articleID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statuses})
}

func (h *ComplianceHandler) Summary(c *fiber.Ctx) error {
	summaries, err := h.compSvc.SummaryByDepartment(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries})
}
