package obs

import (
	"context"
	"log/slog"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/events"
)

// LogPublisher writes domain events to the logger. It stands in for the
// Kafka publisher when no brokers are configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) PublishEvents(ctx context.Context, evts []events.DomainEvent) error {
	if p.Logger == nil {
		return nil
	}
	for _, e := range evts {
		p.Logger.Info("domain event", "name", e.EventName(), "aggregate_id", e.AggregateID(), "occurred_at", e.OccurredAt())
	}
	return nil
}

var _ policies.EventPublisher = LogPublisher{}
