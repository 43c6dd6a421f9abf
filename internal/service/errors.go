package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-events-api/internal/repository"
)

var (
	// ErrEventNotFound indicates the event does not exist or is not in the expected state.
	ErrEventNotFound = errors.New("event not found")
	// ErrParticipantNotFound indicates the participant does not exist or is not in the expected state.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrForbidden is returned when the actor's role does not grant the ability.
	ErrForbidden = errors.New("this action is unauthorized")
	// ErrConflict is returned when a write collides with a unique live record.
	ErrConflict = errors.New("record conflicts with an existing record")
	// ErrInvalidDateRange is returned when an event ends before it starts.
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	// ErrInvalidInput is returned when free text is empty once sanitized.
	ErrInvalidInput = errors.New("invalid input")
)

// translateRepoError maps repository and driver errors onto service errors.
func translateRepoError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
