package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/service"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

// ActivityHandler exposes the mutation trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	actorID, err := parseQueryInt(c, "actor_id")
	if err != nil || actorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}
	entityID, err := parseQueryInt(c, "entity_id")
	if err != nil || entityID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity id")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    uint(actorID),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   uint(entityID),
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs", response)
}
