package service

import (
	"context"
	"sync"
	"time"

	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/pkg/events"

	"github.com/patrickmn/go-cache"
)

const moduleConsumer = "CONSUMER"

// IConsumerService is the downstream side of the emitter: it receives envelopes at least once
// and hands each event id to its handlers once.
type IConsumerService interface {
	On(eventType events.Type, handler events.Handler)
	Handle(ctx context.Context, envelope events.Envelope) error
	Consume(ctx context.Context) error
}

type consumerService struct {
	source  events.Source
	group   string
	seen    *cache.Cache
	journal logger.ILogger
	logger  logger.ILogger

	mu       sync.RWMutex
	handlers map[events.Type][]events.Handler
}

// NewConsumerService remembers handled event ids for dedupTTL. The journal receives one line per
// delivered envelope, duplicates included.
func NewConsumerService(
	source events.Source,
	group string,
	dedupTTL time.Duration,
	journal logger.ILogger,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		source:   source,
		group:    group,
		seen:     cache.New(dedupTTL, 2*dedupTTL),
		journal:  journal,
		logger:   logger,
		handlers: make(map[events.Type][]events.Handler),
	}
}

func (cs *consumerService) On(eventType events.Type, handler events.Handler) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.handlers[eventType] = append(cs.handlers[eventType], handler)
}

func (cs *consumerService) Consume(ctx context.Context) error {
	if err := cs.source.Subscribe(ctx, cs.group, cs.Handle); err != nil {
		return err
	}
	cs.logger.Info(moduleConsumer, "Consuming domain events", map[string]interface{}{"group": cs.group})
	return nil
}

// Handle dispatches the envelope unless its id was already handled. A handler error leaves the
// id unmarked so the redelivery is processed.
func (cs *consumerService) Handle(ctx context.Context, envelope events.Envelope) error {
	id := envelope.Id.String()

	_, duplicate := cs.seen.Get(id)
	cs.journal.Info(moduleConsumer, "Event received", map[string]interface{}{
		"event_id":    id,
		"event_type":  string(envelope.Type),
		"occurred_at": envelope.OccurredAt.Format(time.RFC3339),
		"duplicate":   duplicate,
	})
	if duplicate {
		return nil
	}

	cs.mu.RLock()
	handlers := cs.handlers[envelope.Type]
	cs.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, envelope); err != nil {
			cs.logger.Error(moduleConsumer, "Event handler failed", map[string]interface{}{
				"event_id":   id,
				"event_type": string(envelope.Type),
				"error":      err.Error(),
			})
			return err
		}
	}

	cs.seen.SetDefault(id, struct{}{})
	return nil
}
