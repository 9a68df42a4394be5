package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/evidence"
)

type EvidenceHandler struct {
	evidenceSvc evidence.Service
}

func NewEvidenceHandler(evidenceSvc evidence.Service) *EvidenceHandler {
	return &EvidenceHandler{evidenceSvc: evidenceSvc}
}

func (h *EvidenceHandler) Upload(c *fiber.Ctx) error {
	complianceStatusID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}

	ev, err := h.evidenceSvc.Upload(c.Context(), middleware.GetCurrentUser(c),
		complianceStatusID, fileHeader.Filename, contentType, fileHeader.Size, file, middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

func (h *EvidenceHandler) List(c *fiber.Ctx) error {
	complianceStatusID, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	files, err := h.evidenceSvc.List(c.Context(), complianceStatusID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": files})
}

func (h *EvidenceHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.evidenceSvc.Delete(c.Context(), middleware.GetCurrentUser(c), id, middleware.RequestMeta(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "evidence deleted"})
}
