package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/models"
)

// entity lets generic code reach the model methods through *T.
type entity[T any] interface {
	*T
	models.Entity
}

// commitQueue holds work that must only happen once the surrounding transaction commits.
type commitQueue struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (q *commitQueue) add(fn func(context.Context)) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *commitQueue) merge(child *commitQueue) {
	child.mu.Lock()
	fns := child.fns
	child.fns = nil
	child.mu.Unlock()

	q.mu.Lock()
	q.fns = append(q.fns, fns...)
	q.mu.Unlock()
}

func (q *commitQueue) run(ctx context.Context) {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}

// pendingQueue is implemented by repositories bound to an open transaction.
type pendingQueue interface {
	pending() *commitQueue
}

type gormRepository[T any, PT entity[T]] struct {
	db     *gorm.DB
	hooks  audit.Hooks
	logger zerolog.Logger
	queue  *commitQueue
}

// NewGormRepository builds the direct gorm implementation for model T.
func NewGormRepository[T any, PT entity[T]](db *gorm.DB, hooks audit.Hooks, logger zerolog.Logger) Repository[T] {
	return newGormRepository[T, PT](db, hooks, logger)
}

func newGormRepository[T any, PT entity[T]](db *gorm.DB, hooks audit.Hooks, logger zerolog.Logger) *gormRepository[T, PT] {
	entityName := PT(new(T)).EntityName()
	return &gormRepository[T, PT]{
		db:     db,
		hooks:  hooks,
		logger: logger.With().Str("component", entityName+"_repository").Logger(),
	}
}

func (r *gormRepository[T, PT]) pending() *commitQueue {
	return r.queue
}

func (r *gormRepository[T, PT]) entityName() string {
	return PT(new(T)).EntityName()
}

func (r *gormRepository[T, PT]) schema() (*schema.Schema, error) {
	return parseSchema(r.db, new(T))
}

// transaction runs fn against a copy of r bound to a database transaction.
// After hooks queued inside fn run once the outermost transaction commits.
func (r *gormRepository[T, PT]) transaction(ctx context.Context, fn func(tx *gormRepository[T, PT]) error) error {
	queue := &commitQueue{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound := *r
		bound.db = tx
		bound.queue = queue
		return fn(&bound)
	})
	if err != nil {
		return err
	}

	if r.queue != nil {
		r.queue.merge(queue)
		return nil
	}
	queue.run(ctx)
	return nil
}

func (r *gormRepository[T, PT]) afterCommit(ctx context.Context, fn func(context.Context)) {
	if r.queue != nil {
		r.queue.add(fn)
		return
	}
	fn(ctx)
}

func (r *gormRepository[T, PT]) runAfter(ctx context.Context, m *audit.Mutation) {
	r.afterCommit(ctx, func(ctx context.Context) {
		if err := r.hooks.After(ctx, m); err != nil {
			r.logger.Warn().Err(err).Str("op", string(m.Op)).Msg("post-mutation hook failed")
		}
	})
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *gormRepository[T, PT]) Find(ctx context.Context, id uint) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Take(&record, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &record, nil
}

func (r *gormRepository[T, PT]) FindWithTrashed(ctx context.Context, id uint) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Unscoped().Take(&record, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &record, nil
}

func (r *gormRepository[T, PT]) FindTrashed(ctx context.Context, id uint) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Take(&record, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &record, nil
}

func (r *gormRepository[T, PT]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	sch, err := r.schema()
	if err != nil {
		return nil, err
	}
	column := sch.LookUpField(field)
	if column == nil || column.DBName == "" {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownField, field, r.entityName())
	}

	typed, err := typedAttributes[T](ctx, sch, Attributes{column.DBName: value})
	if err != nil {
		return nil, err
	}

	var records []T
	err = r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column.DBName}, Value: typed[column.DBName]}).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormRepository[T, PT]) Latest(ctx context.Context, orderField string) ([]T, error) {
	if orderField == "" {
		orderField = "created_at"
	}
	sch, err := r.schema()
	if err != nil {
		return nil, err
	}
	column := sch.LookUpField(orderField)
	if column == nil || column.DBName == "" {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownField, orderField, r.entityName())
	}

	var records []T
	err = r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column.DBName}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormRepository[T, PT]) Trashed(ctx context.Context) ([]T, error) {
	var records []T
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormRepository[T, PT]) Count(ctx context.Context, scope Scope) (int64, error) {
	query := r.db.WithContext(ctx).Model(new(T))
	switch scope {
	case ScopeTrashed:
		query = query.Unscoped().Where("deleted_at IS NOT NULL")
	case ScopeAll:
		query = query.Unscoped()
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *gormRepository[T, PT]) FirstOrCreate(ctx context.Context, actor audit.Actor, match, extra Attributes) (*T, bool, error) {
	model := PT(new(T))
	if err := checkFillable(model, match); err != nil {
		return nil, false, err
	}
	if err := checkFillable(model, extra); err != nil {
		return nil, false, err
	}
	if len(match) == 0 {
		return nil, false, fmt.Errorf("%w: empty match on %s", ErrUnknownField, model.EntityName())
	}

	sch, err := r.schema()
	if err != nil {
		return nil, false, err
	}
	conditions, err := typedAttributes[T](ctx, sch, match)
	if err != nil {
		return nil, false, err
	}

	if existing, err := r.firstMatch(ctx, conditions); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	record := new(T)
	if err := decodeAttributes(record, match); err != nil {
		return nil, false, err
	}
	if err := decodeAttributes(record, extra); err != nil {
		return nil, false, err
	}

	mutation := &audit.Mutation{Op: audit.OpCreate, Actor: actor, Entity: model.EntityName(), Record: record}
	if err := r.hooks.Before(ctx, mutation); err != nil {
		return nil, false, err
	}
	if err := decodeAttributes(record, mutation.Changes); err != nil {
		return nil, false, err
	}

	// The savepoint keeps the outer transaction usable when the insert loses a unique race.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if winner, lookupErr := r.firstMatch(ctx, conditions); lookupErr == nil {
			return winner, false, nil
		}
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}

	r.runAfter(ctx, mutation)
	return record, true, nil
}

func (r *gormRepository[T, PT]) firstMatch(ctx context.Context, conditions map[string]any) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).Where(conditions).Order("id").Take(&record).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &record, nil
}

func (r *gormRepository[T, PT]) Update(ctx context.Context, actor audit.Actor, record *T, attrs Attributes) (*T, error) {
	model := PT(record)
	if err := checkFillable(model, attrs); err != nil {
		return nil, err
	}
	id := model.GetID()

	sch, err := r.schema()
	if err != nil {
		return nil, err
	}
	working := *record
	if err := decodeAttributes(&working, attrs); err != nil {
		return nil, err
	}
	assignments, err := columnValues(ctx, sch, &working, attrs.keys())
	if err != nil {
		return nil, err
	}

	mutation := &audit.Mutation{Op: audit.OpUpdate, Actor: actor, Entity: model.EntityName(), Record: &working}
	if err := r.hooks.Before(ctx, mutation); err != nil {
		return nil, err
	}
	assignments = mergeColumns(assignments, mutation.Changes)

	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	fresh, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	mutation.Record = fresh
	r.runAfter(ctx, mutation)
	return fresh, nil
}

func (r *gormRepository[T, PT]) Delete(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	model := PT(record)
	id := model.GetID()

	mutation := &audit.Mutation{Op: audit.OpDelete, Actor: actor, Entity: model.EntityName(), Record: record}
	if err := r.hooks.Before(ctx, mutation); err != nil {
		return false, err
	}
	assignments := mergeColumns(map[string]any{"deleted_at": r.db.NowFunc()}, mutation.Changes)

	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(assignments)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, ErrNotFound
	}

	if err := r.reload(ctx, record, id, true); err != nil {
		return false, err
	}
	r.runAfter(ctx, mutation)
	return true, nil
}

func (r *gormRepository[T, PT]) Restore(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	model := PT(record)
	id := model.GetID()

	mutation := &audit.Mutation{Op: audit.OpRestore, Actor: actor, Entity: model.EntityName(), Record: record}
	if err := r.hooks.Before(ctx, mutation); err != nil {
		return false, err
	}
	assignments := mergeColumns(map[string]any{"deleted_at": nil}, mutation.Changes)

	result := r.db.WithContext(ctx).Unscoped().Model(new(T)).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(assignments)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, ErrNotFound
	}

	if err := r.reload(ctx, record, id, false); err != nil {
		return false, err
	}
	r.runAfter(ctx, mutation)
	return true, nil
}

// reload scans the stored row into a zero value before copying it over record, so
// columns that came back NULL (deleted_at after a restore) do not keep stale values.
func (r *gormRepository[T, PT]) reload(ctx context.Context, record *T, id uint, withTrashed bool) error {
	query := r.db.WithContext(ctx)
	if withTrashed {
		query = query.Unscoped()
	}
	var fresh T
	if err := query.Take(&fresh, id).Error; err != nil {
		return translateNotFound(err)
	}
	*record = fresh
	return nil
}

func (r *gormRepository[T, PT]) ForceDelete(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	model := PT(record)
	id := model.GetID()

	mutation := &audit.Mutation{Op: audit.OpForceDelete, Actor: actor, Entity: model.EntityName(), Record: record}
	if err := r.hooks.Before(ctx, mutation); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Unscoped().Delete(new(T), id)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, ErrNotFound
	}

	r.runAfter(ctx, mutation)
	return true, nil
}
