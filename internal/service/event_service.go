package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/models"
	"github.com/noah-isme/gema-events-api/internal/observability"
	"github.com/noah-isme/gema-events-api/internal/policy"
	"github.com/noah-isme/gema-events-api/internal/repository"
)

const (
	dateLayout               = "2006-01-02"
	defaultActivationRetries = 3
)

// EventService manages events and keeps at most one active event per owner.
type EventService interface {
	ShowAll(ctx context.Context, actor audit.Actor) ([]dto.EventResponse, error)
	Show(ctx context.Context, actor audit.Actor, id uint) (dto.EventResponse, error)
	Trashed(ctx context.Context, actor audit.Actor) ([]dto.EventResponse, error)
	Create(ctx context.Context, actor audit.Actor, payload dto.EventCreateRequest) (dto.EventResponse, error)
	Update(ctx context.Context, actor audit.Actor, id uint, payload dto.EventUpdateRequest) (dto.EventResponse, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	ForceDestroy(ctx context.Context, actor audit.Actor, id uint) error
	Restore(ctx context.Context, actor audit.Actor, id uint) (dto.EventResponse, error)
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	retries   int
	logger    zerolog.Logger
}

// NewEventService constructs the event service. retries bounds how often a create
// or update is re-run after losing a concurrent activation.
func NewEventService(repo repository.EventRepository, validate *validator.Validate, retries int, logger zerolog.Logger) EventService {
	if retries < 0 {
		retries = defaultActivationRetries
	}
	return &eventService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-events-api/internal/service/events"),
		retries:   retries,
		logger:    logger.With().Str("component", "event_service").Logger(),
	}
}

func (s *eventService) authorize(actor audit.Actor, ability policy.Ability, owner *uint) error {
	if !policy.Allows(actor, ability, owner) {
		return ErrForbidden
	}
	return nil
}

func (s *eventService) ShowAll(ctx context.Context, actor audit.Actor) ([]dto.EventResponse, error) {
	if err := s.authorize(actor, policy.ViewAny, nil); err != nil {
		return nil, err
	}
	events, err := s.repo.Latest(ctx, "")
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponseSlice(events), nil
}

func (s *eventService) Show(ctx context.Context, actor audit.Actor, id uint) (dto.EventResponse, error) {
	if err := s.authorize(actor, policy.View, nil); err != nil {
		return dto.EventResponse{}, err
	}
	event, err := s.repo.Find(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}
	return dto.NewEventResponse(*event), nil
}

func (s *eventService) Trashed(ctx context.Context, actor audit.Actor) ([]dto.EventResponse, error) {
	if err := s.authorize(actor, policy.ViewAny, nil); err != nil {
		return nil, err
	}
	events, err := s.repo.Trashed(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponseSlice(events), nil
}

func (s *eventService) Create(ctx context.Context, actor audit.Actor, payload dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.authorize(actor, policy.Create, nil); err != nil {
		return dto.EventResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	title, err := s.cleanTitle(payload.Title)
	if err != nil {
		return dto.EventResponse{}, err
	}
	start, end, err := parseDateRange(payload.StartDate, payload.EndDate)
	if err != nil {
		return dto.EventResponse{}, err
	}

	match := repository.Attributes{
		"title":      title,
		"start_date": datatypes.Date(start),
		"end_date":   datatypes.Date(end),
	}
	extra := repository.Attributes{
		"type":     payload.Type,
		"grouping": payload.Grouping,
	}
	activate := false
	if payload.IsActive != nil {
		extra["is_active"] = *payload.IsActive
		activate = *payload.IsActive
	}

	spanCtx, span := s.tracer.Start(ctx, "events.create", trace.WithAttributes(
		attribute.Int64("events.actor_id", int64(actor.ID)),
		attribute.Bool("events.activate", activate),
	))
	defer span.End()

	var event *models.Event
	err = s.withActivationRetry(spanCtx, activate, func(tx repository.EventRepository) error {
		if activate {
			if err := deactivateCurrent(spanCtx, tx, actor, actor.ID, 0); err != nil {
				return err
			}
		}
		created, _, err := tx.FirstOrCreate(spanCtx, actor, match, extra)
		if err != nil {
			return err
		}
		event = created
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}

	span.SetAttributes(attribute.Int64("events.id", int64(event.ID)))
	return dto.NewEventResponse(*event), nil
}

func (s *eventService) Update(ctx context.Context, actor audit.Actor, id uint, payload dto.EventUpdateRequest) (dto.EventResponse, error) {
	if err := s.authorize(actor, policy.Update, nil); err != nil {
		return dto.EventResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.Find(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}

	attrs := repository.Attributes{}
	if payload.Title != nil {
		title, err := s.cleanTitle(*payload.Title)
		if err != nil {
			return dto.EventResponse{}, err
		}
		attrs["title"] = title
	}
	startRaw := time.Time(event.StartDate).Format(dateLayout)
	endRaw := time.Time(event.EndDate).Format(dateLayout)
	if payload.StartDate != nil {
		startRaw = *payload.StartDate
	}
	if payload.EndDate != nil {
		endRaw = *payload.EndDate
	}
	if payload.StartDate != nil || payload.EndDate != nil {
		start, end, err := parseDateRange(startRaw, endRaw)
		if err != nil {
			return dto.EventResponse{}, err
		}
		attrs["start_date"] = datatypes.Date(start)
		attrs["end_date"] = datatypes.Date(end)
	}
	if payload.Type != nil {
		attrs["type"] = *payload.Type
	}
	if payload.Grouping != nil {
		attrs["grouping"] = *payload.Grouping
	}
	activate := false
	if payload.IsActive != nil {
		attrs["is_active"] = *payload.IsActive
		activate = *payload.IsActive && !event.IsActive && event.CreatedBy != nil
	}

	var updated *models.Event
	err = s.withActivationRetry(ctx, activate, func(tx repository.EventRepository) error {
		if activate {
			if err := deactivateCurrent(ctx, tx, actor, *event.CreatedBy, event.ID); err != nil {
				return err
			}
		}
		fresh, err := tx.Update(ctx, actor, event, attrs)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}

	return dto.NewEventResponse(*updated), nil
}

func (s *eventService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	event, err := s.repo.Find(ctx, id)
	if err != nil {
		return translateRepoError(err, ErrEventNotFound)
	}
	if err := s.authorize(actor, policy.Delete, event.CreatedBy); err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, actor, event)
	return translateRepoError(err, ErrEventNotFound)
}

func (s *eventService) ForceDestroy(ctx context.Context, actor audit.Actor, id uint) error {
	if err := s.authorize(actor, policy.ForceDelete, nil); err != nil {
		return err
	}
	event, err := s.repo.FindWithTrashed(ctx, id)
	if err != nil {
		return translateRepoError(err, ErrEventNotFound)
	}
	_, err = s.repo.ForceDelete(ctx, actor, event)
	return translateRepoError(err, ErrEventNotFound)
}

func (s *eventService) Restore(ctx context.Context, actor audit.Actor, id uint) (dto.EventResponse, error) {
	event, err := s.repo.FindTrashed(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}
	if err := s.authorize(actor, policy.Restore, event.CreatedBy); err != nil {
		return dto.EventResponse{}, err
	}
	if _, err := s.repo.Restore(ctx, actor, event); err != nil {
		return dto.EventResponse{}, translateRepoError(err, ErrEventNotFound)
	}
	return dto.NewEventResponse(*event), nil
}

// withActivationRetry runs fn in a transaction. When the write activates an event,
// a unique-index conflict means another request won the activation race and the
// whole transaction is retried.
func (s *eventService) withActivationRetry(ctx context.Context, activate bool, fn func(tx repository.EventRepository) error) error {
	for attempt := 0; ; attempt++ {
		err := s.repo.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !activate || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= s.retries {
			return err
		}
		observability.ActivationRetries().Inc()
		s.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("activation conflict, retrying")
	}
}

// deactivateCurrent flips the owner's active event off, unless it is skipID.
func deactivateCurrent(ctx context.Context, tx repository.EventRepository, actor audit.Actor, ownerID, skipID uint) error {
	current, err := tx.ActiveByOwner(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load active event: %w", err)
	}
	if current.ID == skipID {
		return nil
	}
	if _, err := tx.Update(ctx, actor, current, repository.Attributes{"is_active": false}); err != nil {
		return fmt.Errorf("deactivate event %d: %w", current.ID, err)
	}
	return nil
}

func (s *eventService) cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if len([]rune(title)) < 2 {
		return "", fmt.Errorf("%w: title must have at least 2 characters", ErrInvalidInput)
	}
	return title, nil
}

func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date", ErrInvalidInput)
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date", ErrInvalidInput)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}
