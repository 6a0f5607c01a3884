package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitparty/internal/models"
)

const defaultChannelPrefix = "splitparty:bill:"

// RedisStream implements Publisher and Subscriber over Redis Pub/Sub, one
// channel per bill. It lets multiple server nodes share a change feed.
// The caller retains ownership of the client and is responsible for closing it.
type RedisStream struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStream.
type RedisOption func(*RedisStream)

// WithChannelPrefix overrides the Pub/Sub channel prefix.
func WithChannelPrefix(prefix string) RedisOption {
	return func(r *RedisStream) {
		r.prefix = prefix
	}
}

// NewRedis returns a stream backed by the given Redis client.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStream {
	r := &RedisStream{client: client, prefix: defaultChannelPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStream) channel(billID string) string {
	return r.prefix + billID
}

// Publish sends the event to the bill's channel as a JSON envelope.
func (r *RedisStream) Publish(ctx context.Context, billID string, ev models.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel(billID), payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe opens a subscription to the bill's channel. The returned handle
// stays open until Close is called or the context is cancelled.
func (r *RedisStream) Subscribe(ctx context.Context, billID string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, r.channel(billID))

	// Wait for the subscription to be confirmed so no event published after
	// this call returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to bill channel: %w", err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan models.ChangeEvent, defaultBufferSize),
	}
	go sub.pump(pubsub.Channel())
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan models.ChangeEvent
	once   sync.Once
}

func (s *redisSubscription) pump(msgs <-chan *redis.Message) {
	defer close(s.events)
	for msg := range msgs {
		var ev models.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			slog.Warn("dropping undecodable stream message", "channel", msg.Channel, "error", err)
			continue
		}
		s.events <- ev
	}
}

func (s *redisSubscription) Events() <-chan models.ChangeEvent {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		// Closing the PubSub closes its message channel, which ends pump.
		err = s.pubsub.Close()
	})
	return err
}
