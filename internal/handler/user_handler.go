package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/user"
)

type UserHandler struct {
	userSvc user.Service
}

func NewUserHandler(userSvc user.Service) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	usr, err := h.userSvc.Create(c.Context(), middleware.GetCurrentUser(c), input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(usr)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	result, err := h.userSvc.GetAll(c.Context(), paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	usr, err := h.userSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(usr)
}

func (h *UserHandler) AssignRole(c *fiber.Ctx) error {
	var input domain.AssignRoleInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.userSvc.AssignRole(c.Context(), middleware.GetCurrentUser(c), input, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "role updated"})
}

func (h *UserHandler) SetDepartments(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.AssignDepartmentsInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.userSvc.SetDepartments(c.Context(), middleware.GetCurrentUser(c), id, input, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "departments updated"})
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.userSvc.Deactivate(c.Context(), middleware.GetCurrentUser(c), id, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "user deactivated"})
}
