package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/database"
	"github.com/noah-isme/gema-events-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type recordingHook struct {
	mu    sync.Mutex
	after []audit.Mutation
}

func (h *recordingHook) Before(context.Context, *audit.Mutation) error {
	return nil
}

func (h *recordingHook) After(_ context.Context, m *audit.Mutation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.after = append(h.after, *m)
	return nil
}

func (h *recordingHook) ops() []audit.Operation {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := make([]audit.Operation, 0, len(h.after))
	for _, m := range h.after {
		ops = append(ops, m.Op)
	}
	return ops
}

var (
	encoder = audit.Actor{ID: 7, Role: "encoder"}
	admin   = audit.Actor{ID: 1, Role: "admin"}
)

func newParticipantRepo(db *gorm.DB, hooks ...audit.Hook) Repository[models.Participant] {
	chain := append(audit.Hooks{audit.NewStamper()}, hooks...)
	return NewGormRepository[models.Participant](db, chain, zerolog.Nop())
}

func newEventRepo(db *gorm.DB, hooks ...audit.Hook) EventRepository {
	chain := append(audit.Hooks{audit.NewStamper()}, hooks...)
	return NewEventRepository(db, chain, zerolog.Nop())
}

func participantKey(last, first string) Attributes {
	return Attributes{"last_name": last, "first_name": first, "mi": "A", "sex": models.SexFemale}
}

func eventKey(title string) Attributes {
	return Attributes{"title": title, "start_date": "2024-03-01", "end_date": "2024-03-03"}
}

func eventExtra() Attributes {
	return Attributes{"type": models.EventTypeWorkshop, "grouping": models.GroupingNone}
}
