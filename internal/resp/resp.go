// Package resp writes the JSON envelope every API response uses:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": "...", "details": {...}}
package resp

import (
	"github.com/gofiber/fiber/v2"
	"github.com/habithome/habithome-api/internal/apperr"
)

// ErrorLocal is the fiber.Ctx locals key holding the *apperr.Error of a
// failed request, for the request logger.
const ErrorLocal = "apperr"

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// Fail maps err to its status and localized message. Internal causes are
// never written to the client.
func Fail(c *fiber.Ctx, err error, locale string) error {
	ae := apperr.From(err)
	c.Locals(ErrorLocal, ae)
	return c.Status(ae.Kind.HTTPStatus()).JSON(Envelope{
		Success: false,
		Error:   ae.Message(locale),
		Details: ae.Details,
	})
}

// Locale picks the message language: an explicit value (usually from the
// request body) wins, then ?locale=, then Accept-Language.
func Locale(c *fiber.Ctx, explicit ...string) string {
	for _, l := range explicit {
		if l != "" {
			return apperr.NormalizeLocale(l)
		}
	}
	if l := c.Query("locale"); l != "" {
		return apperr.NormalizeLocale(l)
	}
	return apperr.NormalizeLocale(c.Get(fiber.HeaderAcceptLanguage))
}
