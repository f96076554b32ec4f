package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
)

// GetMembers lists all members of a family
func (h *Handler) GetMembers(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	members, err := h.families.Members(c.UserContext(), middleware.GetUserID(c), familyID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, members)
}

// RemoveMember removes another member from a family (admin only)
func (h *Handler) RemoveMember(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	targetID, err := paramUUID(c, "userId")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	callerID := middleware.GetUserID(c)
	if err := h.families.RemoveMember(ctx, callerID, familyID, targetID); err != nil {
		return resp.Fail(c, err, locale)
	}

	h.memberLeft(ctx, familyID, targetID, &callerID)
	return resp.OK(c, fiber.Map{"userId": targetID})
}

// LeaveFamily removes the caller from a family
func (h *Handler) LeaveFamily(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	callerID := middleware.GetUserID(c)
	if err := h.families.LeaveFamily(ctx, callerID, familyID); err != nil {
		return resp.Fail(c, err, locale)
	}

	h.memberLeft(ctx, familyID, callerID, nil)
	return resp.OK(c, fiber.Map{"familyId": familyID})
}

// RegenerateInviteCode issues a new invite code (admin only)
func (h *Handler) RegenerateInviteCode(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	familyID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	family, err := h.families.RegenerateInviteCode(c.UserContext(), middleware.GetUserID(c), familyID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, family)
}
