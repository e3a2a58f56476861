package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/utils"
)

// AnalyticsHandler serves per-role aggregation endpoints.
type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAnalyticsHandler builds an analytics handler instance.
func NewAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/student", middleware.RequireRole("student"), h.student)
	router.Get("/professor", middleware.RequireRole("professor"), h.professor)
}

func (h *AnalyticsHandler) student(c *fiber.Ctx) error {
	analytics, err := h.service.Student(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("student analytics failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}

func (h *AnalyticsHandler) professor(c *fiber.Ctx) error {
	analytics, err := h.service.Professor(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("professor analytics failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}
