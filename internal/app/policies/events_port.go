package policies

import (
	"context"

	"staybook/internal/domain/shared/events"
)

// EventPublisher delivers drained domain events to whatever transport is
// configured. Publishing happens after the state change is persisted; a
// failed publish is logged, never rolled back.
type EventPublisher interface {
	PublishEvents(ctx context.Context, evts []events.DomainEvent) error
}
