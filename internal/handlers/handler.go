package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/services"
	"github.com/habithome/habithome-api/internal/validation"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Tokens        *auth.TokenService
	Users         *services.UserService
	Families      *services.FamilyService
	Tasks         *services.TaskService
	Stats         *services.StatsService
	Ledger        *services.Ledger
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Hub           *Hub
	UploadDir     string
	Log           logrus.FieldLogger
}

type Handler struct {
	tokens        *auth.TokenService
	users         *services.UserService
	families      *services.FamilyService
	tasks         *services.TaskService
	stats         *services.StatsService
	ledger        *services.Ledger
	activity      *services.ActivityService
	notifications *services.NotificationService
	hub           *Hub
	uploadDir     string
	log           logrus.FieldLogger
}

func New(d Deps) *Handler {
	hub := d.Hub
	if hub == nil {
		hub = NewHub(d.Log)
	}
	uploadDir := d.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Handler{
		tokens:        d.Tokens,
		users:         d.Users,
		families:      d.Families,
		tasks:         d.Tasks,
		stats:         d.Stats,
		ledger:        d.Ledger,
		activity:      d.Activity,
		notifications: d.Notifications,
		hub:           hub,
		uploadDir:     uploadDir,
		log:           d.Log,
	}
}

func (h *Handler) Hub() *Hub { return h.hub }

// bind parses the JSON body into req and validates it. bodyLocale points at
// the request's locale field, if it has one, and is read after parsing.
func bind(c *fiber.Ctx, req any, bodyLocale *string) (string, error) {
	if err := c.BodyParser(req); err != nil {
		return resp.Locale(c), apperr.BadRequest(apperr.KeyInvalidBody)
	}
	explicit := ""
	if bodyLocale != nil {
		explicit = *bodyLocale
	}
	locale := resp.Locale(c, explicit)
	if errs := validation.Struct(req, locale); errs != nil {
		return locale, apperr.Validation(errs)
	}
	return locale, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest(apperr.KeyInvalidID)
	}
	return id, nil
}

func Healthz(c *fiber.Ctx) error {
	return resp.OK(c, fiber.Map{"status": "ok"})
}
