package stream

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmynk/splitparty/internal/models"
)

// Subscriber channel buffer. A consumer that falls this far behind starts
// losing events, which the at-least-once contract tolerates.
const defaultBufferSize = 64

// Bus is an in-process implementation of Publisher and Subscriber. It backs
// single-node deployments and tests; multi-node deployments use the Redis
// implementation instead.
type Bus struct {
	mu     sync.Mutex
	topics map[string]map[*busSubscription]struct{}
	closed bool
}

// NewBus returns an empty in-process bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string]map[*busSubscription]struct{})}
}

// Publish fans the event out to every subscriber of the bill. Delivery is
// non-blocking: a subscriber whose buffer is full misses the event.
func (b *Bus) Publish(ctx context.Context, billID string, ev models.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.topics[billID] {
		select {
		case sub.events <- ev:
		default:
			slog.Warn("dropping event for slow subscriber",
				"bill_id", billID,
				"entity", ev.Entity,
				"op", ev.Op,
			)
		}
	}
	return nil
}

// Subscribe opens a subscription to the bill's topic.
func (b *Bus) Subscribe(ctx context.Context, billID string) (Subscription, error) {
	sub := &busSubscription{
		bus:    b,
		billID: billID,
		events: make(chan models.ChangeEvent, defaultBufferSize),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.topics[billID] == nil {
		b.topics[billID] = make(map[*busSubscription]struct{})
	}
	b.topics[billID][sub] = struct{}{}
	return sub, nil
}

// Close drops all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for billID, subs := range b.topics {
		for sub := range subs {
			close(sub.events)
		}
		delete(b.topics, billID)
	}
	return nil
}

type busSubscription struct {
	bus    *Bus
	billID string
	events chan models.ChangeEvent
	once   sync.Once
}

func (s *busSubscription) Events() <-chan models.ChangeEvent {
	return s.events
}

func (s *busSubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()
		if subs := s.bus.topics[s.billID]; subs != nil {
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.events)
			}
			if len(subs) == 0 {
				delete(s.bus.topics, s.billID)
			}
		}
	})
	return nil
}
