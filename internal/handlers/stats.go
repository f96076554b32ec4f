package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
)

func (h *Handler) GetStats(c *fiber.Ctx) error {
	stats, err := h.stats.ForUser(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}
	return resp.OK(c, stats)
}

// GetPoints returns the caller's ledger history and running total.
func (h *Handler) GetPoints(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	ctx := c.UserContext()
	userID := middleware.GetUserID(c)

	records, err := h.ledger.History(ctx, userID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	familyIDs, err := h.families.FamilyIDsFor(ctx, userID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	total, err := h.ledger.Total(ctx, userID, familyIDs)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	return resp.OK(c, fiber.Map{
		"records": records,
		"total":   total,
	})
}
