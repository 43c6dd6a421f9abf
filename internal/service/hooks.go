package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-events-api/internal/audit"
	"github.com/noah-isme/gema-events-api/internal/middleware"
	"github.com/noah-isme/gema-events-api/internal/models"
)

func mutationEntityID(m *audit.Mutation) *uint {
	record, ok := m.Record.(models.Entity)
	if !ok {
		return nil
	}
	id := record.GetID()
	if id == 0 {
		return nil
	}
	return &id
}

type activityHook struct {
	recorder ActivityRecorder
}

// NewActivityHook writes one activity log entry per completed mutation.
func NewActivityHook(recorder ActivityRecorder) audit.Hook {
	return activityHook{recorder: recorder}
}

func (h activityHook) Before(context.Context, *audit.Mutation) error {
	return nil
}

func (h activityHook) After(ctx context.Context, m *audit.Mutation) error {
	columns := make([]string, 0, len(m.Changes))
	for column := range m.Changes {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	metadata := map[string]interface{}{"op": string(m.Op), "stamped": columns}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		metadata["correlation_id"] = correlation
	}

	_, err := h.recorder.Record(ctx, ActivityEntry{
		ActorID:    m.Actor.ID,
		ActorRole:  m.Actor.Role,
		Action:     fmt.Sprintf("%s.%s", m.Entity, m.Op.PastTense()),
		EntityType: m.Entity,
		EntityID:   mutationEntityID(m),
		Metadata:   metadata,
	})
	return err
}

// Publisher is the subset of *nats.Conn used to emit lifecycle events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type lifecycleEvent struct {
	Source        string    `json:"source"`
	Entity        string    `json:"entity"`
	Op            string    `json:"op"`
	ID            *uint     `json:"id"`
	ActorID       uint      `json:"actor_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Record        any       `json:"record"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type lifecycleHook struct {
	publisher Publisher
	subject   string
	source    string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLifecycleHook publishes "{subject}.{entity}.{op}" messages after each mutation.
func NewLifecycleHook(publisher Publisher, subject string, logger zerolog.Logger) audit.Hook {
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "records"
	}
	return &lifecycleHook{
		publisher: publisher,
		subject:   subject,
		source:    uuid.NewString(),
		logger:    logger.With().Str("component", "lifecycle_publisher").Logger(),
		now:       time.Now,
	}
}

func (h *lifecycleHook) Before(context.Context, *audit.Mutation) error {
	return nil
}

func (h *lifecycleHook) After(ctx context.Context, m *audit.Mutation) error {
	if h.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(lifecycleEvent{
		Source:        h.source,
		Entity:        m.Entity,
		Op:            string(m.Op),
		ID:            mutationEntityID(m),
		ActorID:       m.Actor.ID,
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		Record:        m.Record,
		OccurredAt:    h.now().UTC(),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s.%s.%s", h.subject, m.Entity, m.Op)
	if err := h.publisher.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	h.logger.Debug().Str("subject", subject).Msg("lifecycle event published")
	return nil
}
