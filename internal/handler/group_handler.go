package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/dto"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/middleware"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/service"
	"github.com/s1vrn/ESI-PROGRESS-TRACKER/internal/utils"
)

// GroupHandler manages group and group-feed endpoints.
type GroupHandler struct {
	service service.GroupService
	logger  zerolog.Logger
}

// NewGroupHandler builds a group handler instance.
func NewGroupHandler(service service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Get("", h.listMine)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Get("/:id/messages", h.listMessages)
	router.Post("/:id/messages", h.postMessage)
}

func (h *GroupHandler) listMine(c *fiber.Ctx) error {
	groups, err := h.service.ListMine(c.UserContext(), middleware.IdentityFromCtx(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.GroupCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Create(c.UserContext(), middleware.IdentityFromCtx(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *GroupHandler) get(c *fiber.Ctx) error {
	group, err := h.service.Get(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "group retrieved", group)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	var payload dto.GroupUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Update(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "group updated", group)
}

func (h *GroupHandler) listMessages(c *fiber.Ctx) error {
	since := parseQuerySince(c, "since")

	messages, err := h.service.ListMessages(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), since)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "messages retrieved", messages)
}

func (h *GroupHandler) postMessage(c *fiber.Ctx) error {
	var payload dto.GroupMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.PostMessage(c.UserContext(), middleware.IdentityFromCtx(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message posted", message)
}

func (h *GroupHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "group not found")
	case errors.Is(err, service.ErrNotGroupMember):
		return utils.SendError(c, fiber.StatusForbidden, "caller is not a member of the group")
	case errors.Is(err, service.ErrEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, "message text must not be empty")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
