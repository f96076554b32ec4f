package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
)

// UploadsPrefix is the URL path uploaded files are served under.
const UploadsPrefix = "/uploads"

const maxAvatarBytes = 5 * 1024 * 1024

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadAvatar stores a multipart "image" file and sets it as the caller's
// avatar.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	locale := resp.Locale(c)

	file, err := c.FormFile("image")
	if err != nil {
		return resp.Fail(c, apperr.BadRequest(apperr.KeyImageMissing), locale)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		return resp.Fail(c, apperr.BadRequest(apperr.KeyImageType), locale)
	}
	if file.Size > maxAvatarBytes {
		return resp.Fail(c, apperr.BadRequest(apperr.KeyImageTooLarge), locale)
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return resp.Fail(c, apperr.Internal(fmt.Errorf("create upload dir: %w", err)), locale)
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		return resp.Fail(c, apperr.Internal(fmt.Errorf("save avatar: %w", err)), locale)
	}

	user, err := h.users.SetAvatar(c.UserContext(), middleware.GetUserID(c), UploadsPrefix+"/"+filename)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, user)
}
