package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for everything handed to an outbound sink.
type Event interface {
	// EventId is stable across re-emission; consumers de-duplicate on it.
	EventId() uuid.UUID

	// EventType returns the discriminant, e.g. "booking-made".
	EventType() string

	// Payload returns the value serialised onto the wire.
	Payload() interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Emitter hands events to a downstream channel. Delivery is at-least-once.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, event Event) error

func (f EmitterFunc) Emit(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// HeaderEventId and HeaderEventType are set on every outbound message.
const (
	HeaderEventId   = "Event-Id"
	HeaderEventType = "Event-Type"
)

// Handler processes one delivered envelope. A non-nil error asks the source to redeliver.
type Handler func(ctx context.Context, envelope Envelope) error

// Source delivers envelopes from a downstream channel to a handler until ctx is cancelled.
type Source interface {
	Subscribe(ctx context.Context, group string, handler Handler) error
}
