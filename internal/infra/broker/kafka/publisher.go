package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/events"
)

// EventPublisher wraps domain events in CloudEvents-style envelopes and
// publishes each to a topic derived from its name prefix
// (booking.paid → booking.events.v1).
type EventPublisher struct {
	Producer    *Producer
	TopicPrefix string
	Source      string
}

func (p EventPublisher) PublishEvents(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		payload, err := p.envelope(e)
		if err != nil {
			return err
		}
		headers := map[string]string{"content-type": "application/cloudevents+json"}
		if err := p.Producer.Publish(ctx, p.topicFor(e.EventName()), e.AggregateID(), payload, headers); err != nil {
			return err
		}
	}
	return nil
}

func (p EventPublisher) envelope(e events.DomainEvent) ([]byte, error) {
	return json.Marshal(map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            e.EventName() + ".v1",
		"source":          p.source(),
		"time":            e.OccurredAt().Format(time.RFC3339),
		"datacontenttype": "application/json",
		"data":            e,
	})
}

func (p EventPublisher) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return p.TopicPrefix + base + ".events.v1"
}

func (p EventPublisher) source() string {
	if p.Source == "" {
		return "staybook"
	}
	return p.Source
}

var _ policies.EventPublisher = EventPublisher{}
