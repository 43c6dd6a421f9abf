package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/middleware"
	"github.com/noah-isme/gema-events-api/internal/models"
)

func TestActivityHookRecordsMutation(t *testing.T) {
	repo := &memoryActivityRepo{}
	hook := NewActivityHook(NewActivityService(repo, testLogger()))

	event := &models.Event{Title: "Hooked"}
	event.ID = 3
	mutation := &audit.Mutation{
		Op:      audit.OpRestore,
		Actor:   audit.Actor{ID: 4, Role: "encoder"},
		Entity:  "event",
		Record:  event,
		Changes: map[string]any{"restored_by": uint(4)},
	}
	ctx := middleware.ContextWithCorrelation(context.Background(), "req-42")
	require.NoError(t, hook.After(ctx, mutation))

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	require.Equal(t, "event.restored", entry.Action)
	require.Equal(t, uint(3), *entry.EntityID)
	require.Equal(t, uint(4), entry.ActorID)
	require.Equal(t, "req-42", entry.Metadata["correlation_id"])
}

func TestLifecycleHookPublishesSubjectAndPayload(t *testing.T) {
	publisher := &recordingPublisher{}
	hook := NewLifecycleHook(publisher, "gema.records.", testLogger())

	participant := &models.Participant{LastName: "Aquino"}
	participant.ID = 11
	err := hook.After(context.Background(), &audit.Mutation{
		Op:     audit.OpForceDelete,
		Actor:  audit.Actor{ID: 1, Role: "admin"},
		Entity: "participant",
		Record: participant,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"gema.records.participant.force_delete"}, publisher.subjects)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &payload))
	require.Equal(t, float64(11), payload["id"])
	require.Equal(t, "force_delete", payload["op"])
	require.NotContains(t, payload, "correlation_id")
}

type brokenPublisher struct{}

func (brokenPublisher) Publish(string, []byte) error {
	return errors.New("no responders")
}

func TestLifecycleHookErrorsDoNotFailWrites(t *testing.T) {
	db := newMemoryDB(t)
	svc, _ := newEventService(db, NewLifecycleHook(brokenPublisher{}, "", testLogger()))

	event, err := svc.Create(context.Background(), encoderActor, eventRequest("Unpublished", nil))
	require.NoError(t, err)
	require.NotZero(t, event.ID)
}
