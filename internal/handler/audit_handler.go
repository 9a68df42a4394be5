package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"compliance-platform/internal/domain"
	"compliance-platform/internal/service/audit"
)

type AuditHandler struct {
	auditSvc audit.Service
}

func NewAuditHandler(auditSvc audit.Service) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

func auditFilterFromQuery(c *fiber.Ctx) domain.AuditLogFilter {
	var filter domain.AuditLogFilter
	if userID := c.Query("user_id"); userID != "" {
		if id, err := uuid.Parse(userID); err == nil {
			filter.UserID = &id
		}
	}
	if action := c.Query("action"); action != "" {
		a := domain.AuditAction(action)
		filter.ActionType = &a
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		filter.EntityType = &entityType
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	result, err := h.auditSvc.List(c.Context(), auditFilterFromQuery(c), paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *AuditHandler) Recent(c *fiber.Ctx) error {
	logs, err := h.auditSvc.Recent(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": logs})
}
