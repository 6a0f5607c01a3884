// Package stream delivers bill change events between clients.
//
// Events are published to a per-bill topic and fanned out to every
// subscriber of that bill. Delivery is at-least-once with no ordering
// guarantee; consumers reduce events idempotently, so duplicates and
// reordering are harmless.
//
// Subscriptions are explicit handles: a session subscribes when it starts
// and closes the handle when it ends. There are no ambient global channels.
package stream

import (
	"context"

	"github.com/mmynk/splitparty/internal/models"
)

// Publisher publishes change events to a bill's topic.
type Publisher interface {
	Publish(ctx context.Context, billID string, ev models.ChangeEvent) error
}

// Subscriber opens subscriptions to a bill's topic.
type Subscriber interface {
	Subscribe(ctx context.Context, billID string) (Subscription, error)
}

// Stream is a full publish/subscribe endpoint on the change feed.
type Stream interface {
	Publisher
	Subscriber
}

// Subscription is a scoped handle on one bill's event feed. Events delivers
// inbound events until the subscription is closed; Close is idempotent and
// causes Events to be closed.
type Subscription interface {
	Events() <-chan models.ChangeEvent
	Close() error
}
