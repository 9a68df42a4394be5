package handler

import (
	"github.com/gofiber/fiber/v2"

	"compliance-platform/internal/middleware"
	"compliance-platform/internal/service/notification"
)

type NotificationHandler struct {
	notifSvc notification.Service
}

func NewNotificationHandler(notifSvc notification.Service) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread_only", false)

	result, err := h.notifSvc.List(c.Context(), middleware.GetUserID(c), unreadOnly, paginationFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifSvc.CountUnread(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifSvc.MarkAsRead(c.Context(), id, middleware.GetUserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifSvc.MarkAllAsRead(c.Context(), middleware.GetUserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "all notifications marked as read"})
}
