package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/utils"
)

// SubmissionHandler manages submission lifecycle endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole("student"), h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/comments", middleware.RequireRole("student"), h.addComment)
	router.Post("/:id/feedback", middleware.RequireRole("professor"), h.applyFeedback)
	router.Get("/:id/versions", h.versionHistory)
	router.Get("/:id/versions/:version", h.version)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{
		StudentID: queryString(c, "studentId"),
		GroupID:   queryString(c, "groupId"),
	}

	submissions, err := h.service.List(c.UserContext(), middleware.IdentityFromCtx(c), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Create(c.UserContext(), middleware.IdentityFromCtx(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	submission, err := h.service.Get(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

// update dispatches on role: students patch content and metadata, the
// assigned professor may only touch notes and milestones.
func (h *SubmissionHandler) update(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)
	if !identity.Valid() {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if identity.IsProfessor() {
		var payload dto.SubmissionReviewRequest
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}

		submission, err := h.service.Review(c.UserContext(), identity, c.Params("id"), payload)
		if err != nil {
			return h.handleError(c, err)
		}

		return utils.SendSuccess(c, "submission updated", submission)
	}

	var payload dto.SubmissionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Update(c.UserContext(), identity, c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission updated", submission)
}

func (h *SubmissionHandler) addComment(c *fiber.Ctx) error {
	var payload dto.CommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.AddComment(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "comment added", submission)
}

func (h *SubmissionHandler) applyFeedback(c *fiber.Ctx) error {
	var payload dto.FeedbackRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.ApplyFeedback(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback applied", submission)
}

func (h *SubmissionHandler) versionHistory(c *fiber.Ctx) error {
	history, err := h.service.VersionHistory(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "versions retrieved", history)
}

func (h *SubmissionHandler) version(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid version number")
	}

	version, err := h.service.Version(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), number)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "version retrieved", version)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrVersionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "version not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrNotGroupMember):
		return utils.SendError(c, fiber.StatusForbidden, "caller is not a member of the group")
	case errors.Is(err, service.ErrInvalidProfessor):
		return utils.SendError(c, fiber.StatusBadRequest, "professor does not resolve to a verified professor")
	case errors.Is(err, service.ErrGroupNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "group not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "template not found")
	case errors.Is(err, service.ErrEmptyComment):
		return utils.SendError(c, fiber.StatusBadRequest, "comment text must not be empty")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
