package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"placement-engine-be/internal/bootstrap"
	"placement-engine-be/internal/config"
	"placement-engine-be/pkg/events"
)

const moduleConsumerMain = "CONSUMER_MAIN"

// Standalone downstream consumer. It reads the configured broker and journals every delivery;
// the in-process channel sink is only useful from cmd/rest.
func main() {
	cfg := config.Load()
	if cfg.Events.Sink == bootstrap.SinkChannel || cfg.Events.Sink == "" {
		log.Fatal("Error: DOMAIN_EVENTS_SINK must be nats or redis for a standalone consumer")
	}

	container, err := bootstrap.NewContainer(nil, cfg)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	logDelivery := func(_ context.Context, envelope events.Envelope) error {
		container.Logger.Info(moduleConsumerMain, "Domain event received", map[string]interface{}{
			"event_id":   envelope.Id.String(),
			"event_type": string(envelope.Type),
			"timestamp":  envelope.OccurredAt,
		})
		return nil
	}
	for _, t := range []events.Type{
		events.TypeBookingMade,
		events.TypeBookingCancelled,
		events.TypeApplicationWithdrawn,
		events.TypePlacementApplicationWithdrawn,
		events.TypeMatchRequestWithdrawn,
	} {
		container.ConsumerService.On(t, logDelivery)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Consumer failed: %v", err)
	}
	<-ctx.Done()
	container.Logger.Info(moduleConsumerMain, "Consumer stopped", nil)
}
