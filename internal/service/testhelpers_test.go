package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/database"
	"github.com/noah-isme/gema-events-api/internal/models"
	"github.com/noah-isme/gema-events-api/internal/repository"
)

var (
	adminActor   = audit.Actor{ID: 1, Role: "admin"}
	encoderActor = audit.Actor{ID: 7, Role: "encoder"}
	otherEncoder = audit.Actor{ID: 8, Role: "encoder"}
	viewerActor  = audit.Actor{ID: 9, Role: "user"}
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newFileDB serialises writers with BEGIN IMMEDIATE so concurrent transactions queue instead of failing.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := database.ConnectSQLite(path + "?_busy_timeout=10000&_txlock=immediate")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newEventService(db *gorm.DB, hooks ...audit.Hook) (EventService, repository.EventRepository) {
	chain := append(audit.Hooks{audit.NewStamper()}, hooks...)
	repo := repository.NewEventRepository(db, chain, testLogger())
	return NewEventService(repo, testValidator(), defaultActivationRetries, testLogger()), repo
}

func newParticipantService(db *gorm.DB, hooks ...audit.Hook) ParticipantService {
	chain := append(audit.Hooks{audit.NewStamper()}, hooks...)
	repo := repository.NewGormRepository[models.Participant](db, chain, testLogger())
	return NewParticipantService(repo, testValidator(), testLogger())
}

func activeEvents(t *testing.T, db *gorm.DB, owner uint) []models.Event {
	t.Helper()
	var events []models.Event
	require.NoError(t, db.Where("is_active = ? AND created_by = ?", true, owner).Find(&events).Error)
	return events
}

func boolPtr(v bool) *bool {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func ptrUint(v uint) *uint {
	return &v
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func failOn(op audit.Operation, entity string) audit.Hook {
	return audit.HookFuncs{BeforeFunc: func(_ context.Context, m *audit.Mutation) error {
		if m.Op == op && m.Entity == entity {
			return fmt.Errorf("%s %s rejected", entity, op)
		}
		return nil
	}}
}
