package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Payload is the event body delivered to notifiers.
type Payload map[string]any

// Event is an emitted domain event.
type Event struct {
	Topic      string
	Payload    Payload
	OccurredAt time.Time
}

// Notifier reacts to emitted events (queues, email, metrics).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans domain events out to downstream handlers. Delivery is best
// effort: notifier errors are joined and returned but never roll back the
// operation that emitted the event.
type Bus struct {
	Logger    zerolog.Logger
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit dispatches the event to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, topic string, payload Payload) error {
	if b == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	ev := Event{Topic: topic, Payload: payload, OccurredAt: now}

	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			b.Logger.Warn().Err(err).Str("topic", topic).Msg("event notifier failed")
			joined = errors.Join(joined, err)
		}
	}
	return joined
}
