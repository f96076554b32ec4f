package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/services"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	page := services.ParsePage(c.Query("page", "1"), c.Query("limit", "20"))
	out, err := h.notifications.List(c.UserContext(), middleware.GetUserID(c), page)
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}
	return resp.OK(c, out)
}

// MarkNotificationRead marks a single notification as read
func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	notifID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	if err := h.notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), notifID); err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, fiber.Map{"id": notifID})
}

// MarkAllRead marks all notifications as read for the current user
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.notifications.MarkAllRead(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}
	return resp.OK(c, fiber.Map{"updated": n})
}
