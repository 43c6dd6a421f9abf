package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/middleware"
	"github.com/noah-isme/gema-events-api/internal/repository"
	"github.com/noah-isme/gema-events-api/internal/service"
	"github.com/noah-isme/gema-events-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	switch v := c.Locals(middleware.LocalUserID).(type) {
	case uint:
		return v
	case int:
		if v < 0 {
			return 0
		}
		return uint(v)
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if role, ok := c.Locals(middleware.LocalUserRole).(string); ok {
		return role
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) audit.Actor {
	return audit.Actor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func validationFields(err error) (map[string]string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return fields, true
}

// sendServiceError maps service errors onto HTTP statuses; anything unknown is logged as a 500.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if fields, ok := validationFields(err); ok {
		return utils.SendValidationError(c, "validation failed", fields)
	}

	switch {
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrParticipantNotFound), errors.Is(err, repository.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrUnknownField):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, audit.ErrMissingActor):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrConflict):
		return utils.SendError(c, fiber.StatusConflict, service.ErrConflict.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
