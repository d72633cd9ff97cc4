package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"placement-engine-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

// frame carries the headers alongside the body since Redis pub/sub has no message metadata.
type frame struct {
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

// Bus publishes domain events to a single Redis pub/sub channel.
// Pub/sub is fire-and-forget: subscribers that are offline miss events.
type Bus struct {
	rdb     *redis.Client
	channel string
}

func New(rdb *redis.Client, channel string) *Bus {
	return &Bus{rdb: rdb, channel: channel}
}

// NewFromURL parses a redis:// URL, falling back to treating it as a bare address.
func NewFromURL(url, channel string) *Bus {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return New(redis.NewClient(opt), channel)
}

func (b *Bus) Emit(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	payload, err := json.Marshal(frame{
		Headers: map[string]string{
			events.HeaderEventId:   event.EventId().String(),
			events.HeaderEventType: event.EventType(),
		},
		Body: body,
	})
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), b.channel, err)
	}
	return nil
}

// Subscribe listens on the channel until ctx is cancelled. Handler errors are logged only,
// pub/sub has no redelivery.
func (b *Bus) Subscribe(ctx context.Context, _ string, handler events.Handler) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				envelope, err := Decode([]byte(msg.Payload))
				if err != nil {
					log.Printf("Redis event decode error: %v", err)
					continue
				}
				if err := handler(ctx, envelope); err != nil {
					log.Printf("Handler failed for event %s: %v", envelope.Id, err)
				}
			}
		}
	}()
	return nil
}

// Decode unwraps a published frame into its envelope.
func Decode(payload []byte) (events.Envelope, error) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return events.Envelope{}, err
	}
	return events.UnmarshalEnvelope(f.Body)
}

func (b *Bus) Close() error {
	return b.rdb.Close()
}
