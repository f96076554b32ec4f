package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/services"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	res, err := h.users.Register(c.UserContext(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.Created(c, res)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	res, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, res)
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req models.RefreshRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	res, err := h.users.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, res)
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.users.Me(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}
	return resp.OK(c, user)
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req models.DeviceTokenRequest
	locale, err := bind(c, &req, nil)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	if err := h.users.SetDeviceToken(c.UserContext(), middleware.GetUserID(c), req.Token); err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, fiber.Map{"registered": true})
}
