package nats

import (
	"context"
	"fmt"
	"log"

	"placement-engine-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Subscriber handles listening for domain events from NATS.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	prefix string
}

func NewSubscriber(url, prefix string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, prefix: prefix}, nil
}

// Subscribe attaches a durable consumer named group to every subject under the prefix.
// The consumer stops when ctx is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, group string, handler events.Handler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       group,
		FilterSubject: s.prefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		envelope, err := events.UnmarshalEnvelope(msg.Data())
		if err != nil {
			// Poison message; redelivery will not fix it.
			log.Printf("Error decoding event on %s (id %s): %v", msg.Subject(), msg.Headers().Get(events.HeaderEventId), err)
			_ = msg.Term()
			return
		}

		if err := handler(ctx, envelope); err != nil {
			log.Printf("Handler failed for event %s: %v", envelope.Id, err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()

	log.Printf("Subscribed to %s.> with durable %s", s.prefix, group)
	return nil
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
