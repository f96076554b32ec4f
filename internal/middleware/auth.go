package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/resp"
)

// Locals keys set by Protected.
const (
	LocalUserID   = "userId"
	LocalIdentity = "identity"
)

// UserLookup resolves the user behind a token.
type UserLookup interface {
	FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Protected requires a valid access token and a user that still exists.
func Protected(tokens *auth.TokenService, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		locale := resp.Locale(c)

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return resp.Fail(c, apperr.Unauthenticated(apperr.KeyMissingAuthHeader), locale)
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return resp.Fail(c, apperr.Unauthenticated(apperr.KeyInvalidToken), locale)
		}

		claims := tokens.VerifyAccessToken(tokenString)
		if claims == nil {
			return resp.Fail(c, apperr.Unauthenticated(apperr.KeyInvalidToken), locale)
		}

		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return resp.Fail(c, apperr.Unauthenticated(apperr.KeyUserNotFound), locale)
			}
			return resp.Fail(c, err, locale)
		}

		SetIdentity(c, auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
		return c.Next()
	}
}

// SetIdentity stores the authenticated user in request locals.
func SetIdentity(c *fiber.Ctx, id auth.Identity) {
	c.Locals(LocalUserID, id.ID)
	c.Locals(LocalIdentity, id)
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func GetIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(auth.Identity)
	return id, ok
}
