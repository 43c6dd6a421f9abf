package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/service"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

// EventHandler exposes the event endpoints.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register attaches event routes to the router group. Extra handlers such as a
// rate limiter run before the write routes.
func (h *EventHandler) Register(router fiber.Router, writeGuards ...fiber.Handler) {
	router.Get("", h.index)
	router.Get("/trashed", h.trashed)
	router.Get("/:id", h.show)
	router.Post("", append(writeGuards, h.store)...)
	router.Put("/:id", append(writeGuards, h.update)...)
	router.Delete("/:id/force", append(writeGuards, h.forceDestroy)...)
	router.Delete("/:id", append(writeGuards, h.destroy)...)
	router.Post("/:id/restore", append(writeGuards, h.restore)...)
}

func (h *EventHandler) index(c *fiber.Ctx) error {
	events, err := h.service.ShowAll(c.UserContext(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list events")
	}
	return utils.SendSuccess(c, "events retrieved", events)
}

func (h *EventHandler) trashed(c *fiber.Ctx) error {
	events, err := h.service.Trashed(c.UserContext(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list trashed events")
	}
	return utils.SendSuccess(c, "trashed events retrieved", events)
}

func (h *EventHandler) show(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	event, err := h.service.Show(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load event")
	}
	return utils.SendSuccess(c, "event retrieved", event)
}

func (h *EventHandler) store(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create event")
	}

	requestLogger(h.logger, c).Info().Uint("event_id", event.ID).Bool("is_active", event.IsActive).Msg("event stored")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update event")
	}
	return utils.SendSuccess(c, "event updated", event)
}

func (h *EventHandler) destroy(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete event")
	}
	return utils.SendSuccess(c, "event deleted", nil)
}

func (h *EventHandler) forceDestroy(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.ForceDestroy(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to permanently delete event")
	}
	return utils.SendSuccess(c, "event permanently deleted", nil)
}

func (h *EventHandler) restore(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	event, err := h.service.Restore(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to restore event")
	}
	return utils.SendSuccess(c, "event restored", event)
}
