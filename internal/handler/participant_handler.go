package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/service"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

// ParticipantHandler exposes the participant endpoints.
type ParticipantHandler struct {
	service service.ParticipantService
	logger  zerolog.Logger
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(service service.ParticipantService, logger zerolog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
		logger:  logger.With().Str("component", "participant_handler").Logger(),
	}
}

// Register attaches participant routes to the router group.
func (h *ParticipantHandler) Register(router fiber.Router, writeGuards ...fiber.Handler) {
	router.Get("", h.index)
	router.Get("/trashed", h.trashed)
	router.Get("/:id", h.show)
	router.Post("", append(writeGuards, h.store)...)
	router.Put("/:id", append(writeGuards, h.update)...)
	router.Delete("/:id/force", append(writeGuards, h.forceDestroy)...)
	router.Delete("/:id", append(writeGuards, h.destroy)...)
	router.Post("/:id/restore", append(writeGuards, h.restore)...)
}

func (h *ParticipantHandler) index(c *fiber.Ctx) error {
	participants, err := h.service.ShowAll(c.UserContext(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list participants")
	}
	return utils.SendSuccess(c, "participants retrieved", participants)
}

func (h *ParticipantHandler) trashed(c *fiber.Ctx) error {
	participants, err := h.service.Trashed(c.UserContext(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list trashed participants")
	}
	return utils.SendSuccess(c, "trashed participants retrieved", participants)
}

func (h *ParticipantHandler) show(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	participant, err := h.service.Show(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load participant")
	}
	return utils.SendSuccess(c, "participant retrieved", participant)
}

func (h *ParticipantHandler) store(c *fiber.Ctx) error {
	var payload dto.ParticipantCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	participant, created, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create participant")
	}
	if !created {
		return utils.SendSuccess(c, "participant already registered", participant)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "participant created", participant)
}

func (h *ParticipantHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var payload dto.ParticipantUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	participant, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to update participant")
	}
	return utils.SendSuccess(c, "participant updated", participant)
}

func (h *ParticipantHandler) destroy(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to delete participant")
	}
	return utils.SendSuccess(c, "participant deleted", nil)
}

func (h *ParticipantHandler) forceDestroy(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.service.ForceDestroy(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err, "failed to permanently delete participant")
	}
	return utils.SendSuccess(c, "participant permanently deleted", nil)
}

func (h *ParticipantHandler) restore(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	participant, err := h.service.Restore(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to restore participant")
	}
	return utils.SendSuccess(c, "participant restored", participant)
}
