package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/cache"
	"github.com/noah-isme/gema-events-api/internal/models"
	"github.com/noah-isme/gema-events-api/internal/observability"
)

// DefaultCacheTTL is used when a cached repository is built with a non-positive TTL.
const DefaultCacheTTL = 60 * time.Second

type cachedRepository[T any, PT entity[T]] struct {
	base   Repository[T]
	store  cache.Store
	ttl    time.Duration
	entity string
	prefix string
	logger zerolog.Logger
	queue  *commitQueue
}

// NewCachedRepository decorates base with read-through point and latest caching.
//
// Keys are "{table}_{id}" and "{table}_latest".
func NewCachedRepository[T any, PT entity[T]](base Repository[T], store cache.Store, ttl time.Duration, logger zerolog.Logger) Repository[T] {
	return newCachedRepository[T, PT](base, store, ttl, logger)
}

func newCachedRepository[T any, PT entity[T]](base Repository[T], store cache.Store, ttl time.Duration, logger zerolog.Logger) *cachedRepository[T, PT] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	model := PT(new(T))
	return &cachedRepository[T, PT]{
		base:   base,
		store:  store,
		ttl:    ttl,
		entity: model.EntityName(),
		prefix: model.TableName() + "_",
		logger: logger.With().Str("component", model.EntityName()+"_cache").Logger(),
	}
}

// bind returns a copy that reads through tx and defers cache writes to queue.
func (c *cachedRepository[T, PT]) bind(tx Repository[T], queue *commitQueue) *cachedRepository[T, PT] {
	bound := *c
	bound.base = tx
	bound.queue = queue
	return &bound
}

func (c *cachedRepository[T, PT]) pointKey(id uint) string {
	return fmt.Sprintf("%s%d", c.prefix, id)
}

func (c *cachedRepository[T, PT]) latestKey() string {
	return c.prefix + "latest"
}

func (c *cachedRepository[T, PT]) inTransaction() bool {
	return c.queue != nil
}

func (c *cachedRepository[T, PT]) load(ctx context.Context, key string, dest any) bool {
	hit, err := c.store.Get(ctx, key, dest)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		observability.RecordCacheRequests().WithLabelValues(c.entity, "error").Inc()
		return false
	case hit:
		observability.RecordCacheRequests().WithLabelValues(c.entity, "hit").Inc()
	default:
		observability.RecordCacheRequests().WithLabelValues(c.entity, "miss").Inc()
	}
	return hit
}

func (c *cachedRepository[T, PT]) save(ctx context.Context, key string, value any) {
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *cachedRepository[T, PT]) evict(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache eviction failed")
	}
}

// effect applies fn now, or after commit when bound to a transaction.
func (c *cachedRepository[T, PT]) effect(ctx context.Context, fn func(context.Context)) {
	if c.queue != nil {
		c.queue.add(fn)
		return
	}
	fn(ctx)
}

func (c *cachedRepository[T, PT]) writeThrough(ctx context.Context, record *T) {
	snapshot := *record
	key := c.pointKey(PT(&snapshot).GetID())
	c.effect(ctx, func(ctx context.Context) {
		c.evict(ctx, c.latestKey())
		c.save(ctx, key, snapshot)
	})
}

func (c *cachedRepository[T, PT]) invalidate(ctx context.Context, id uint) {
	keys := []string{c.pointKey(id), c.latestKey()}
	c.effect(ctx, func(ctx context.Context) {
		c.evict(ctx, keys...)
	})
}

func (c *cachedRepository[T, PT]) Find(ctx context.Context, id uint) (*T, error) {
	if c.inTransaction() {
		return c.base.Find(ctx, id)
	}

	key := c.pointKey(id)
	var cached T
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	record, err := c.base.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, record)
	return record, nil
}

func (c *cachedRepository[T, PT]) Latest(ctx context.Context, orderField string) ([]T, error) {
	if c.inTransaction() || (orderField != "" && orderField != "created_at") {
		return c.base.Latest(ctx, orderField)
	}

	var cached []T
	if c.load(ctx, c.latestKey(), &cached) {
		return cached, nil
	}

	records, err := c.base.Latest(ctx, orderField)
	if err != nil {
		return nil, err
	}
	c.save(ctx, c.latestKey(), records)
	return records, nil
}

func (c *cachedRepository[T, PT]) FindWithTrashed(ctx context.Context, id uint) (*T, error) {
	return c.base.FindWithTrashed(ctx, id)
}

func (c *cachedRepository[T, PT]) FindTrashed(ctx context.Context, id uint) (*T, error) {
	return c.base.FindTrashed(ctx, id)
}

func (c *cachedRepository[T, PT]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	return c.base.FindBy(ctx, field, value)
}

func (c *cachedRepository[T, PT]) Trashed(ctx context.Context) ([]T, error) {
	return c.base.Trashed(ctx)
}

func (c *cachedRepository[T, PT]) Count(ctx context.Context, scope Scope) (int64, error) {
	return c.base.Count(ctx, scope)
}

func (c *cachedRepository[T, PT]) FirstOrCreate(ctx context.Context, actor audit.Actor, match, extra Attributes) (*T, bool, error) {
	record, created, err := c.base.FirstOrCreate(ctx, actor, match, extra)
	if err != nil {
		return nil, false, err
	}
	c.writeThrough(ctx, record)
	return record, created, nil
}

func (c *cachedRepository[T, PT]) Update(ctx context.Context, actor audit.Actor, record *T, attrs Attributes) (*T, error) {
	fresh, err := c.base.Update(ctx, actor, record, attrs)
	if err != nil {
		return nil, err
	}
	c.writeThrough(ctx, fresh)
	return fresh, nil
}

func (c *cachedRepository[T, PT]) Delete(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	ok, err := c.base.Delete(ctx, actor, record)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, PT(record).GetID())
	return ok, nil
}

func (c *cachedRepository[T, PT]) ForceDelete(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	ok, err := c.base.ForceDelete(ctx, actor, record)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, PT(record).GetID())
	return ok, nil
}

func (c *cachedRepository[T, PT]) Restore(ctx context.Context, actor audit.Actor, record *T) (bool, error) {
	ok, err := c.base.Restore(ctx, actor, record)
	if err != nil {
		return false, err
	}
	c.invalidate(ctx, PT(record).GetID())
	return ok, nil
}

type cachedEventRepository struct {
	*cachedRepository[models.Event, *models.Event]
	events EventRepository
}

// NewCachedEventRepository decorates an event repository with the record cache.
func NewCachedEventRepository(base EventRepository, store cache.Store, ttl time.Duration, logger zerolog.Logger) EventRepository {
	return &cachedEventRepository{
		cachedRepository: newCachedRepository[models.Event](base, store, ttl, logger),
		events:           base,
	}
}

func (r *cachedEventRepository) ActiveByOwner(ctx context.Context, ownerID uint) (*models.Event, error) {
	return r.events.ActiveByOwner(ctx, ownerID)
}

func (r *cachedEventRepository) Transaction(ctx context.Context, fn func(tx EventRepository) error) error {
	return r.events.Transaction(ctx, func(tx EventRepository) error {
		var queue *commitQueue
		if pq, ok := tx.(pendingQueue); ok {
			queue = pq.pending()
		}
		return fn(&cachedEventRepository{
			cachedRepository: r.cachedRepository.bind(tx, queue),
			events:           tx,
		})
	})
}
