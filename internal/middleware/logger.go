package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/metrics"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request and records HTTP metrics.
// Internal errors are logged with their cause.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)
		metrics.RecordHTTPRequest(c.Method(), c.Route().Path, status, latency)

		entry := log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": latency.String(),
			"ip":      c.IP(),
		})
		if id := GetUserID(c); id != uuid.Nil {
			entry = entry.WithField("user_id", id)
		}

		ae, _ := c.Locals(resp.ErrorLocal).(*apperr.Error)
		switch {
		case ae != nil && ae.Kind == apperr.KindInternal:
			entry.WithError(ae).Error("request failed")
		case status >= fiber.StatusInternalServerError:
			entry.Error("request failed")
		default:
			entry.Info("request")
		}
		return nil
	}
}
