// Package audit defines the hooks the repository runs around every record
// mutation, and the stamper that records who performed it.
package audit

import (
	"context"
	"errors"
)

// Operation names a record mutation.
type Operation string

const (
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpRestore     Operation = "restore"
	OpForceDelete Operation = "force_delete"
)

// PastTense renders the operation the way activity actions are named.
func (o Operation) PastTense() string {
	switch o {
	case OpCreate:
		return "created"
	case OpUpdate:
		return "updated"
	case OpDelete:
		return "deleted"
	case OpRestore:
		return "restored"
	case OpForceDelete:
		return "force_deleted"
	default:
		return string(o)
	}
}

// ErrMissingActor is returned when a write arrives without an acting user.
var ErrMissingActor = errors.New("acting user is required")

// Actor is the authenticated user behind a write.
type Actor struct {
	ID   uint
	Role string
}

// Mutation describes a pending or completed change to one record.
//
// Changes holds column assignments. Before hooks may add to it; the repository
// persists everything in Changes with the same statement as the mutation.
type Mutation struct {
	Op      Operation
	Actor   Actor
	Entity  string
	Record  any
	Changes map[string]any
}

// Set assigns a column value that will be persisted with the mutation.
func (m *Mutation) Set(column string, value any) {
	if m.Changes == nil {
		m.Changes = make(map[string]any)
	}
	m.Changes[column] = value
}

// Hook runs around a mutation. A Before error aborts the mutation.
type Hook interface {
	Before(ctx context.Context, m *Mutation) error
	After(ctx context.Context, m *Mutation) error
}

// Hooks runs a chain of hooks in order.
type Hooks []Hook

// Before stops at the first failing hook.
func (h Hooks) Before(ctx context.Context, m *Mutation) error {
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Before(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// After runs every hook and joins their errors.
func (h Hooks) After(ctx context.Context, m *Mutation) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.After(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HookFuncs adapts plain functions to the Hook interface. Nil funcs are no-ops.
type HookFuncs struct {
	BeforeFunc func(ctx context.Context, m *Mutation) error
	AfterFunc  func(ctx context.Context, m *Mutation) error
}

func (f HookFuncs) Before(ctx context.Context, m *Mutation) error {
	if f.BeforeFunc == nil {
		return nil
	}
	return f.BeforeFunc(ctx, m)
}

func (f HookFuncs) After(ctx context.Context, m *Mutation) error {
	if f.AfterFunc == nil {
		return nil
	}
	return f.AfterFunc(ctx, m)
}
