package audit

import (
	"context"

	"github.com/noah-isme/gema-events-api/internal/observability"
)

// MetricsHook counts completed mutations per entity and operation.
type MetricsHook struct{}

func (MetricsHook) Before(context.Context, *Mutation) error {
	return nil
}

func (MetricsHook) After(_ context.Context, m *Mutation) error {
	observability.RecordMutations().WithLabelValues(m.Entity, string(m.Op)).Inc()
	return nil
}
