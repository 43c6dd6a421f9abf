package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/dto"
	"github.com/noah-isme/gema-events-api/internal/models"
	"github.com/noah-isme/gema-events-api/internal/policy"
	"github.com/noah-isme/gema-events-api/internal/repository"
)

// ParticipantService manages participant records.
type ParticipantService interface {
	ShowAll(ctx context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error)
	Show(ctx context.Context, actor audit.Actor, id uint) (dto.ParticipantResponse, error)
	Trashed(ctx context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error)
	Create(ctx context.Context, actor audit.Actor, payload dto.ParticipantCreateRequest) (dto.ParticipantResponse, bool, error)
	Update(ctx context.Context, actor audit.Actor, id uint, payload dto.ParticipantUpdateRequest) (dto.ParticipantResponse, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	ForceDestroy(ctx context.Context, actor audit.Actor, id uint) error
	Restore(ctx context.Context, actor audit.Actor, id uint) (dto.ParticipantResponse, error)
}

type participantService struct {
	repo      repository.Repository[models.Participant]
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewParticipantService constructs the participant service.
func NewParticipantService(repo repository.Repository[models.Participant], validate *validator.Validate, logger zerolog.Logger) ParticipantService {
	return &participantService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "participant_service").Logger(),
	}
}

func (s *participantService) ShowAll(ctx context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error) {
	if !policy.Allows(actor, policy.ViewAny, nil) {
		return nil, ErrForbidden
	}
	participants, err := s.repo.Latest(ctx, "")
	if err != nil {
		return nil, err
	}
	return dto.NewParticipantResponseSlice(participants), nil
}

func (s *participantService) Show(ctx context.Context, actor audit.Actor, id uint) (dto.ParticipantResponse, error) {
	if !policy.Allows(actor, policy.View, nil) {
		return dto.ParticipantResponse{}, ErrForbidden
	}
	participant, err := s.repo.Find(ctx, id)
	if err != nil {
		return dto.ParticipantResponse{}, translateRepoError(err, ErrParticipantNotFound)
	}
	return dto.NewParticipantResponse(*participant), nil
}

func (s *participantService) Trashed(ctx context.Context, actor audit.Actor) ([]dto.ParticipantResponse, error) {
	if !policy.Allows(actor, policy.ViewAny, nil) {
		return nil, ErrForbidden
	}
	participants, err := s.repo.Trashed(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewParticipantResponseSlice(participants), nil
}

// Create returns the live participant with the same name and sex when one exists,
// and reports whether a new record was stored.
func (s *participantService) Create(ctx context.Context, actor audit.Actor, payload dto.ParticipantCreateRequest) (dto.ParticipantResponse, bool, error) {
	if !policy.Allows(actor, policy.Create, nil) {
		return dto.ParticipantResponse{}, false, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, false, err
	}

	lastName := s.clean(payload.LastName)
	firstName := s.clean(payload.FirstName)
	if lastName == "" || firstName == "" {
		return dto.ParticipantResponse{}, false, fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}

	match := repository.Attributes{
		"last_name":  lastName,
		"first_name": firstName,
		"mi":         s.clean(payload.MI),
		"sex":        payload.Sex,
	}
	extra := repository.Attributes{
		"station": s.clean(payload.Station),
		"mobile":  s.clean(payload.Mobile),
		"email":   strings.TrimSpace(payload.Email),
	}

	participant, created, err := s.repo.FirstOrCreate(ctx, actor, match, extra)
	if err != nil {
		return dto.ParticipantResponse{}, false, translateRepoError(err, ErrParticipantNotFound)
	}
	return dto.NewParticipantResponse(*participant), created, nil
}

func (s *participantService) Update(ctx context.Context, actor audit.Actor, id uint, payload dto.ParticipantUpdateRequest) (dto.ParticipantResponse, error) {
	if !policy.Allows(actor, policy.Update, nil) {
		return dto.ParticipantResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, err
	}

	participant, err := s.repo.Find(ctx, id)
	if err != nil {
		return dto.ParticipantResponse{}, translateRepoError(err, ErrParticipantNotFound)
	}

	attrs := repository.Attributes{}
	setText := func(column string, value *string) {
		if value != nil {
			attrs[column] = s.clean(*value)
		}
	}
	setText("last_name", payload.LastName)
	setText("first_name", payload.FirstName)
	setText("mi", payload.MI)
	setText("station", payload.Station)
	setText("mobile", payload.Mobile)
	if payload.Sex != nil {
		attrs["sex"] = *payload.Sex
	}
	if payload.Email != nil {
		attrs["email"] = strings.TrimSpace(*payload.Email)
	}

	updated, err := s.repo.Update(ctx, actor, participant, attrs)
	if err != nil {
		return dto.ParticipantResponse{}, translateRepoError(err, ErrParticipantNotFound)
	}
	return dto.NewParticipantResponse(*updated), nil
}

func (s *participantService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	participant, err := s.repo.Find(ctx, id)
	if err != nil {
		return translateRepoError(err, ErrParticipantNotFound)
	}
	if !policy.Allows(actor, policy.Delete, participant.CreatedBy) {
		return ErrForbidden
	}
	_, err = s.repo.Delete(ctx, actor, participant)
	return translateRepoError(err, ErrParticipantNotFound)
}

func (s *participantService) ForceDestroy(ctx context.Context, actor audit.Actor, id uint) error {
	if !policy.Allows(actor, policy.ForceDelete, nil) {
		return ErrForbidden
	}
	participant, err := s.repo.FindWithTrashed(ctx, id)
	if err != nil {
		return translateRepoError(err, ErrParticipantNotFound)
	}
	_, err = s.repo.ForceDelete(ctx, actor, participant)
	return translateRepoError(err, ErrParticipantNotFound)
}

func (s *participantService) Restore(ctx context.Context, actor audit.Actor, id uint) (dto.ParticipantResponse, error) {
	participant, err := s.repo.FindTrashed(ctx, id)
	if err != nil {
		return dto.ParticipantResponse{}, translateRepoError(err, ErrParticipantNotFound)
	}
	if !policy.Allows(actor, policy.Restore, participant.CreatedBy) {
		return dto.ParticipantResponse{}, ErrForbidden
	}
	if _, err := s.repo.Restore(ctx, actor, participant); err != nil {
		return dto.ParticipantResponse{}, translateRepoError(err, ErrParticipantNotFound)
	}
	return dto.NewParticipantResponse(*participant), nil
}

func (s *participantService) clean(raw string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(raw))
}
