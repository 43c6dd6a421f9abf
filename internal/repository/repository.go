package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-events-api/internal/audit"
)

var (
	// ErrNotFound is returned when no row matches a lookup or mutation.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownField is returned for attribute keys or fields the model does not expose.
	ErrUnknownField = errors.New("unknown field")
)

// Scope selects which rows Count considers.
type Scope int

const (
	ScopeLive Scope = iota
	ScopeTrashed
	ScopeAll
)

// Attributes maps JSON/column names to values.
type Attributes map[string]any

// Repository is the persistence contract shared by every record type.
//
// Mutations take the acting user explicitly and run the configured audit hooks.
type Repository[T any] interface {
	Find(ctx context.Context, id uint) (*T, error)
	FindWithTrashed(ctx context.Context, id uint) (*T, error)
	FindTrashed(ctx context.Context, id uint) (*T, error)
	FindBy(ctx context.Context, field string, value any) ([]T, error)
	Latest(ctx context.Context, orderField string) ([]T, error)
	Trashed(ctx context.Context) ([]T, error)
	Count(ctx context.Context, scope Scope) (int64, error)

	FirstOrCreate(ctx context.Context, actor audit.Actor, match, extra Attributes) (*T, bool, error)
	Update(ctx context.Context, actor audit.Actor, record *T, attrs Attributes) (*T, error)
	Delete(ctx context.Context, actor audit.Actor, record *T) (bool, error)
	ForceDelete(ctx context.Context, actor audit.Actor, record *T) (bool, error)
	Restore(ctx context.Context, actor audit.Actor, record *T) (bool, error)
}
