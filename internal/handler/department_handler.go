package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/department"
)

type DepartmentHandler struct {
	deptSvc department.Service
}

func NewDepartmentHandler(deptSvc department.Service) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

func (h *DepartmentHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateDepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	dept, err := h.deptSvc.Create(c.Context(), middleware.GetCurrentUser(c), input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dept)
}

func (h *DepartmentHandler) List(c *fiber.Ctx) error {
	result, err := h.deptSvc.List(c.Context(), paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *DepartmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	dept, err := h.deptSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dept)
}

func (h *DepartmentHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateDepartmentInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	dept, err := h.deptSvc.Update(c.Context(), middleware.GetCurrentUser(c), id, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(dept)
}

func (h *DepartmentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.deptSvc.Delete(c.Context(), middleware.GetCurrentUser(c), id, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "department deleted"})
}
