package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/regulation"
	"compliance-platform/internal/service/search"
)

type RegulationHandler struct {
	regSvc    regulation.Service
	searchSvc search.Service
}

func NewRegulationHandler(regSvc regulation.Service, searchSvc search.Service) *RegulationHandler {
	return &RegulationHandler{regSvc: regSvc, searchSvc: searchSvc}
}

func regulationFilterFromQuery(c *fiber.Ctx) domain.RegulationFilter {
	var filter domain.RegulationFilter
	if status := c.Query("status"); status != "" {
		s := domain.RegulationStatus(status)
		filter.Status = &s
	}
	if regType := c.Query("type"); regType != "" {
		t := domain.RegulationType(regType)
		filter.Type = &t
	}
	return filter
}

func (h *RegulationHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateRegulationInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reg, err := h.regSvc.Create(c.Context(), middleware.GetCurrentUser(c), input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(reg)
}

func (h *RegulationHandler) List(c *fiber.Ctx) error {
	result, err := h.regSvc.List(c.Context(), regulationFilterFromQuery(c), paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *RegulationHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	reg, err := h.regSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(reg)
}

func (h *RegulationHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateRegulationInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reg, err := h.regSvc.Update(c.Context(), middleware.GetCurrentUser(c), id, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(reg)
}

func (h *RegulationHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.regSvc.Delete(c.Context(), middleware.GetCurrentUser(c), id, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "regulation deleted"})
}

func (h *RegulationHandler) Transition(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.TransitionRegulationInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reg, err := h.regSvc.Transition(c.Context(), middleware.GetCurrentUser(c), id, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(reg)
}

func (h *RegulationHandler) AvailableTransitions(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	targets, err := h.regSvc.AvailableTransitions(c.Context(), middleware.GetCurrentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transitions": targets})
}

func (h *RegulationHandler) AuditTrail(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	trail, err := h.regSvc.AuditTrail(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trail})
}

func (h *RegulationHandler) Search(c *fiber.Ctx) error {
	result, err := h.searchSvc.Search(c.Context(), c.Query("q"), regulationFilterFromQuery(c), paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}
