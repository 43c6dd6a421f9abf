package audit

import (
	"context"

	"github.com/noah-isme/gema-events-api/internal/models"
)

// Stamp columns written by the Stamper.
const (
	ColumnCreatedBy  = "created_by"
	ColumnUpdatedBy  = "updated_by"
	ColumnDeletedBy  = "deleted_by"
	ColumnRestoredBy = "restored_by"
)

// Stamper records the acting user on auditable records.
type Stamper struct{}

// NewStamper constructs the stamping hook.
func NewStamper() Stamper {
	return Stamper{}
}

// Before adds the stamp columns for the operation to the mutation.
func (Stamper) Before(_ context.Context, m *Mutation) error {
	if m.Actor.ID == 0 {
		return ErrMissingActor
	}
	if _, ok := m.Record.(models.Auditable); !ok {
		return nil
	}

	id := m.Actor.ID
	switch m.Op {
	case OpCreate:
		m.Set(ColumnCreatedBy, id)
		m.Set(ColumnUpdatedBy, id)
	case OpUpdate:
		m.Set(ColumnUpdatedBy, id)
	case OpDelete:
		m.Set(ColumnDeletedBy, id)
	case OpRestore:
		m.Set(ColumnRestoredBy, id)
	}
	return nil
}

// After is a no-op; stamps are persisted with the mutation itself.
func (Stamper) After(context.Context, *Mutation) error {
	return nil
}
