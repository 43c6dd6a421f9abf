package repository

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/models"
)

// EventRepository adds the single-active lookup and transactions to the event repository.
type EventRepository interface {
	Repository[models.Event]
	// ActiveByOwner returns the owner's most recently updated live active event,
	// locking the row when the database supports it.
	ActiveByOwner(ctx context.Context, ownerID uint) (*models.Event, error)
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx EventRepository) error) error
}

type gormEventRepository struct {
	*gormRepository[models.Event, *models.Event]
}

// NewEventRepository constructs the gorm-backed event repository.
func NewEventRepository(db *gorm.DB, hooks audit.Hooks, logger zerolog.Logger) EventRepository {
	return &gormEventRepository{gormRepository: newGormRepository[models.Event](db, hooks, logger)}
}

func (r *gormEventRepository) ActiveByOwner(ctx context.Context, ownerID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("is_active = ? AND created_by = ?", true, ownerID).
		Order("updated_at DESC").
		Order("id DESC").
		Take(&event).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &event, nil
}

func (r *gormEventRepository) Transaction(ctx context.Context, fn func(tx EventRepository) error) error {
	return r.transaction(ctx, func(tx *gormRepository[models.Event, *models.Event]) error {
		return fn(&gormEventRepository{gormRepository: tx})
	})
}
