package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/habithome/habithome-api/internal/handlers"
	"github.com/habithome/habithome-api/internal/metrics"
)

// Setup mounts every endpoint on app. protected guards authenticated routes
// and authLimiter throttles the credential endpoints.
func Setup(app *fiber.App, h *handlers.Handler, protected fiber.Handler, authLimiter fiber.Handler) {
	app.Get("/healthz", handlers.Healthz)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authLimiter, h.Register)
	auth.Post("/login", authLimiter, h.Login)
	auth.Post("/refresh", authLimiter, h.Refresh)
	auth.Get("/me", protected, h.GetMe)
	auth.Post("/avatar", protected, h.UploadAvatar)

	families := api.Group("/families", protected)
	families.Get("/", h.GetFamilies)
	families.Post("/", h.CreateFamily)
	families.Post("/join", h.JoinFamily)
	families.Get("/:id", h.GetFamily)
	families.Get("/:id/activity", h.GetFamilyActivity)
	families.Get("/:id/members", h.GetMembers)
	families.Delete("/:id/members/:userId", h.RemoveMember)
	families.Post("/:id/leave", h.LeaveFamily)
	families.Post("/:id/invite-code", h.RegenerateInviteCode)

	tasks := api.Group("/tasks", protected)
	tasks.Get("/", h.GetTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Put("/:id", h.UpdateTask)
	tasks.Delete("/:id", h.DeleteTask)
	tasks.Post("/:id/complete", h.CompleteTask)

	api.Get("/stats", protected, h.GetStats)
	api.Get("/points", protected, h.GetPoints)

	// Notifications
	notifications := api.Group("/notifications", protected)
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)

	// Device token for push notifications
	api.Post("/device-token", protected, h.RegisterDeviceToken)

	// WebSocket for real-time family updates
	app.Get("/ws/families/:id", h.WebSocketUpgrade(), websocket.New(h.HandleWebSocket))
}
