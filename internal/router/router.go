package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/config"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/handler"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler   *handler.SubmissionHandler
	AnalyticsHandler    *handler.AnalyticsHandler
	NotificationHandler *handler.NotificationHandler
	AnnouncementHandler *handler.AnnouncementHandler
	GroupHandler        *handler.GroupHandler
	TemplateHandler     *handler.TemplateHandler
	UserHandler         *handler.UserHandler
	UploadHandler       *handler.UploadHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())
	app.Static("/uploads", cfg.UploadDir)

	authenticated := api.Group("", middleware.RequireIdentity())

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(authenticated.Group("/submissions"))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(authenticated.Group("/analytics"))
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(authenticated.Group("/notifications"))
	}

	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(authenticated.Group("/announcements"))
	}

	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(authenticated.Group("/groups"))
	}

	if deps.TemplateHandler != nil {
		deps.TemplateHandler.Register(authenticated.Group("/templates"))
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users"))
		deps.UserHandler.RegisterProfessors(authenticated.Group("/professors"))
	}

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(authenticated.Group("/uploads"))
	}
}
