package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/resp"
)

func (h *Handler) GetFamilies(c *fiber.Ctx) error {
	families, err := h.families.ListFamilies(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}
	return resp.OK(c, families)
}

func (h *Handler) GetFamily(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	family, err := h.families.GetFamily(c.UserContext(), middleware.GetUserID(c), familyID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, family)
}

func (h *Handler) CreateFamily(c *fiber.Ctx) error {
	var req models.CreateFamilyRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	family, err := h.families.CreateFamily(ctx, actor.ID, req.Name, req.Description)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.familyCreated(ctx, actor, family)
	return resp.Created(c, family)
}

// JoinFamily adds the caller to the family behind an invite code
func (h *Handler) JoinFamily(c *fiber.Ctx) error {
	var req models.JoinFamilyRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	family, err := h.families.JoinFamily(ctx, actor.ID, req.InviteCode)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.memberJoined(ctx, actor, family)
	return resp.OK(c, family)
}
