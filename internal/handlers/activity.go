package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/services"
)

// GetFamilyActivity returns paginated activity for a family
func (h *Handler) GetFamilyActivity(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	page := services.ParsePage(c.Query("page", "1"), c.Query("limit", "20"))
	out, err := h.activity.List(c.UserContext(), middleware.GetUserID(c), familyID, page)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, out)
}
