package repository

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-events-api/internal/cache"
	"github.com/noah-isme/gema-events-api/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newCachedEvents(t *testing.T) (EventRepository, *cache.MemoryStore, *fakeClock, *recordingHook) {
	t.Helper()
	db := newTestDB(t)
	hook := &recordingHook{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryStore(clock.Now)
	repo := NewCachedEventRepository(newEventRepo(db, hook), store, time.Minute, zerolog.Nop())
	return repo, store, clock, hook
}

func cachedEvent(t *testing.T, store cache.Store, key string) (models.Event, bool) {
	t.Helper()
	var event models.Event
	hit, err := store.Get(context.Background(), key, &event)
	require.NoError(t, err)
	return event, hit
}

func TestCachedFirstOrCreateWritesThrough(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)
	ctx := context.Background()

	event, created, err := repo.FirstOrCreate(ctx, encoder, eventKey("Cached"), eventExtra())
	require.NoError(t, err)
	require.True(t, created)

	cached, hit := cachedEvent(t, store, "events_"+uintString(event.ID))
	require.True(t, hit)
	require.Equal(t, "Cached", cached.Title)
	require.Equal(t, encoder.ID, *cached.CreatedBy)
}

func TestCachedFindServesStaleCopyUntilExpiry(t *testing.T) {
	repo, _, clock, _ := newCachedEvents(t)
	ctx := context.Background()

	event, _, err := repo.FirstOrCreate(ctx, encoder, eventKey("Original"), eventExtra())
	require.NoError(t, err)

	base := repo.(*cachedEventRepository).events.(*gormEventRepository)
	require.NoError(t, base.db.Model(&models.Event{}).Where("id = ?", event.ID).Update("title", "Changed directly").Error)

	found, err := repo.Find(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, "Original", found.Title)

	clock.Advance(59 * time.Second)
	found, err = repo.Find(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, "Original", found.Title)

	clock.Advance(time.Second)
	found, err = repo.Find(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, "Changed directly", found.Title)
}

func TestCachedFindDoesNotCacheMisses(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)

	_, err := repo.Find(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, store.Len())
}

func TestCachedLatestIsInvalidatedByWrites(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)
	ctx := context.Background()

	first, _, err := repo.FirstOrCreate(ctx, encoder, eventKey("First"), eventExtra())
	require.NoError(t, err)

	latest, err := repo.Latest(ctx, "")
	require.NoError(t, err)
	require.Len(t, latest, 1)

	var cached []models.Event
	hit, err := store.Get(ctx, "events_latest", &cached)
	require.NoError(t, err)
	require.True(t, hit)

	_, _, err = repo.FirstOrCreate(ctx, encoder, eventKey("Second"), eventExtra())
	require.NoError(t, err)
	hit, err = store.Get(ctx, "events_latest", &cached)
	require.NoError(t, err)
	require.False(t, hit)

	latest, err = repo.Latest(ctx, "")
	require.NoError(t, err)
	require.Len(t, latest, 2)

	_, err = repo.Delete(ctx, admin, first)
	require.NoError(t, err)
	_, hit = cachedEvent(t, store, "events_"+uintString(first.ID))
	require.False(t, hit)

	latest, err = repo.Latest(ctx, "")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, "Second", latest[0].Title)

	byTitle, err := repo.Latest(ctx, "title")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
}

func TestCachedUpdateRefreshesPointEntry(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)
	ctx := context.Background()

	event, _, err := repo.FirstOrCreate(ctx, encoder, eventKey("Before"), eventExtra())
	require.NoError(t, err)

	_, err = repo.Update(ctx, admin, event, Attributes{"title": "After"})
	require.NoError(t, err)

	cached, hit := cachedEvent(t, store, "events_"+uintString(event.ID))
	require.True(t, hit)
	require.Equal(t, "After", cached.Title)
	require.Equal(t, admin.ID, *cached.UpdatedBy)
}

func TestCachedForceDeleteAndRestoreEvict(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)
	ctx := context.Background()

	event, _, err := repo.FirstOrCreate(ctx, encoder, eventKey("Evicted"), eventExtra())
	require.NoError(t, err)
	key := "events_" + uintString(event.ID)

	_, err = repo.Delete(ctx, admin, event)
	require.NoError(t, err)
	_, err = repo.Restore(ctx, admin, event)
	require.NoError(t, err)
	_, hit := cachedEvent(t, store, key)
	require.False(t, hit)

	_, err = repo.Find(ctx, event.ID)
	require.NoError(t, err)
	_, hit = cachedEvent(t, store, key)
	require.True(t, hit)

	_, err = repo.ForceDelete(ctx, admin, event)
	require.NoError(t, err)
	_, hit = cachedEvent(t, store, key)
	require.False(t, hit)

	_, err = repo.Find(ctx, event.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCachedTransactionRollbackLeavesNoEntries(t *testing.T) {
	repo, store, _, hook := newCachedEvents(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx EventRepository) error {
		if _, _, err := tx.FirstOrCreate(ctx, encoder, eventKey("Phantom"), eventExtra()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, store.Len())
	require.Empty(t, hook.ops())
}

func TestCachedTransactionAppliesEffectsAfterCommit(t *testing.T) {
	repo, store, _, _ := newCachedEvents(t)
	ctx := context.Background()

	var id uint
	err := repo.Transaction(ctx, func(tx EventRepository) error {
		event, _, err := tx.FirstOrCreate(ctx, encoder, eventKey("Committed"), eventExtra())
		if err != nil {
			return err
		}
		id = event.ID
		require.Zero(t, store.Len(), "cache writes must wait for commit")
		return nil
	})
	require.NoError(t, err)

	_, hit := cachedEvent(t, store, "events_"+uintString(id))
	require.True(t, hit)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, any, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) Delete(context.Context, ...string) error {
	return errors.New("store down")
}

func TestCachedRepositoryToleratesStoreErrors(t *testing.T) {
	db := newTestDB(t)
	repo := NewCachedRepository[models.Participant](newParticipantRepo(db), failingStore{}, time.Minute, zerolog.Nop())
	ctx := context.Background()

	participant, _, err := repo.FirstOrCreate(ctx, encoder, participantKey("Tan", "May"), Attributes{"mobile": "0917"})
	require.NoError(t, err)

	found, err := repo.Find(ctx, participant.ID)
	require.NoError(t, err)
	require.Equal(t, "Tan", found.LastName)

	latest, err := repo.Latest(ctx, "")
	require.NoError(t, err)
	require.Len(t, latest, 1)

	_, err = repo.Delete(ctx, encoder, found)
	require.NoError(t, err)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
