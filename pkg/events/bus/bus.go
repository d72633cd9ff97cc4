package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"placement-engine-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is an in-process emitter backed by a watermill GoChannel. Used when no broker is configured
// and by the consumer in single-binary deployments.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func New(topic string, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
			Persistent:          true,
		}, logger),
		topic: topic,
	}
}

func (b *Bus) Emit(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(events.HeaderEventId, event.EventId().String())
	msg.Metadata.Set(events.HeaderEventType, event.EventType())
	msg.SetContext(ctx)

	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}
	return nil
}

// Messages returns the raw message stream. Callers must Ack or Nack each message.
func (b *Bus) Messages(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

// Subscribe decodes each message into an envelope and hands it to handler in the background.
// Messages that fail to decode are acked and dropped; handler errors are nacked for redelivery.
func (b *Bus) Subscribe(ctx context.Context, _ string, handler events.Handler) error {
	messages, err := b.Messages(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			envelope, err := events.UnmarshalEnvelope(msg.Payload)
			if err != nil {
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), envelope); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Topic() string {
	return b.topic
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
