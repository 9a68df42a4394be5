package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/article"
)

type ArticleHandler struct {
	articleSvc article.Service
}

func NewArticleHandler(articleSvc article.Service) *ArticleHandler {
	return &ArticleHandler{articleSvc: articleSvc}
}

func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	regulationID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.CreateArticleInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	art, err := h.articleSvc.Create(c.Context(), middleware.GetCurrentUser(c), regulationID, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(art)
}

func (h *ArticleHandler) ListByRegulation(c *fiber.Ctx) error {
	regulationID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	articles, err := h.articleSvc.ListByRegulation(c.Context(), regulationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articles})
}

func (h *ArticleHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	art, err := h.articleSvc.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(art)
}

func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateArticleInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	art, err := h.articleSvc.Update(c.Context(), middleware.GetCurrentUser(c), id, input, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(art)
}

func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.articleSvc.Delete(c.Context(), middleware.GetCurrentUser(c), id, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "article deleted"})
}
