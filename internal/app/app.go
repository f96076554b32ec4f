// Package app assembles the HTTP server from configuration and a database
// handle.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/config"
	"github.com/habithome/habithome-api/internal/handlers"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/routes"
	"github.com/habithome/habithome-api/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	limiterCleanupInterval = time.Minute
	// bodyLimit leaves room for a full-size avatar plus multipart framing.
	bodyLimit = 8 * 1024 * 1024
)

// Server is a configured Fiber app plus the background work tied to it.
type Server struct {
	App  *fiber.App
	stop chan struct{}
}

// Close stops background goroutines. It does not shut the app down.
func (s *Server) Close() {
	close(s.stop)
}

// Option adjusts how New wires the server.
type Option func(*options)

type options struct {
	pusher services.Pusher
}

// WithPusher overrides the Firebase push client.
func WithPusher(p services.Pusher) Option {
	return func(o *options) { o.pusher = p }
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret,
		auth.WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	if err != nil {
		return nil, err
	}

	pusher := o.pusher
	if pusher == nil {
		pusher = services.NewPushService(ctx, cfg.FCMServiceAccount, log)
	}

	families := services.NewFamilyService(db)
	ledger := services.NewLedger(db)
	users := services.NewUserService(db, tokens)
	h := handlers.New(handlers.Deps{
		Tokens:        tokens,
		Users:         users,
		Families:      families,
		Tasks:         services.NewTaskService(db, families, ledger),
		Stats:         services.NewStatsService(db, families, ledger),
		Ledger:        ledger,
		Activity:      services.NewActivityService(db, families),
		Notifications: services.NewNotificationService(db, pusher, log),
		Hub:           handlers.NewHub(log),
		UploadDir:     cfg.UploadDir,
		Log:           log,
	})

	app := fiber.New(fiber.Config{
		AppName:               "habithome",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Accept-Language, Authorization",
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions}, ","),
	}))
	app.Use(middleware.RequestLogger(log))

	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)
	stop := make(chan struct{})
	limiter.StartCleanup(limiterCleanupInterval, stop)

	app.Static(handlers.UploadsPrefix, cfg.UploadDir)
	routes.Setup(app, h, middleware.Protected(tokens, users), limiter.Handler())

	return &Server{App: app, stop: stop}, nil
}

// errorHandler renders errors that escape handlers, such as unknown routes,
// in the standard envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	locale := resp.Locale(c)
	if fe, ok := err.(*fiber.Error); ok {
		c.Status(fe.Code)
		return c.JSON(resp.Envelope{Success: false, Error: fe.Message})
	}
	return resp.Fail(c, apperr.Internal(err), locale)
}
