package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) insertEvent(eventType string, version int, data string) uuid.UUID {
	h.t.Helper()
	row := &entity.DomainEvent{
		Id:            uuid.New(),
		Type:          eventType,
		Crn:           testCrn,
		OccurredAt:    fixedNow,
		CreatedAt:     fixedNow,
		SchemaVersion: version,
		Data:          []byte(data),
		TriggerSource: entity.TriggerSourceSystem,
	}
	require.NoError(h.t, h.store.NewUnitOfWork(h.ctx).DomainEventRepository().Create(h.ctx, row))
	return row.Id
}

func TestDomainEventGet(t *testing.T) {
	h := newHarness(t)
	app, _ := h.acceptedApplication()
	submitted := h.eventOfType(app.Id, events.TypeApplicationSubmitted)

	envelope, err := h.domainEvents.Get(h.ctx, submitted.Id, events.TypeApplicationSubmitted)
	require.NoError(t, err)
	assert.Equal(t, submitted.Id, envelope.Id)
	details, ok := envelope.EventDetails.(events.ApplicationSubmitted)
	require.True(t, ok)
	assert.Equal(t, app.Id, details.ApplicationId)
	assert.Equal(t, "A1234AI", details.Person.NomsNumber)

	_, err = h.domainEvents.Get(h.ctx, submitted.Id, events.TypeBookingMade)
	assert.True(t, apperror.IsGeneralValidation(err))

	_, err = h.domainEvents.Get(h.ctx, uuid.New(), "")
	assert.True(t, apperror.IsNotFound(err))
}

func TestDomainEventGet_ReadsLegacyRows(t *testing.T) {
	h := newHarness(t)

	renamed := h.insertEvent("booking-date-changed", events.CurrentSchemaVersion, `{"bookingId":"`+uuid.NewString()+`"}`)
	envelope, err := h.domainEvents.Get(h.ctx, renamed, events.TypeBookingChanged)
	require.NoError(t, err)
	assert.Equal(t, events.TypeBookingChanged, envelope.Type)

	v1 := h.insertEvent(string(events.TypeBookingCancelled), 1, `{"cancelledBy":"N54A123","cancellationReason":"Other"}`)
	envelope, err = h.domainEvents.Get(h.ctx, v1, events.TypeBookingCancelled)
	require.NoError(t, err)
	details, ok := envelope.EventDetails.(events.BookingCancelled)
	require.True(t, ok)
	assert.Equal(t, "N54A123", details.CancelledBy.StaffCode)
	assert.Equal(t, "booking", details.TriggeringEntityType)
}

func TestDomainEventReplay(t *testing.T) {
	tests := []struct {
		name        string
		emitEnabled bool
	}{
		{name: "emission enabled", emitEnabled: true},
		{name: "emission disabled", emitEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(c *EngineConfig) { c.EmitEnabled = tt.emitEnabled })
			app, _ := h.acceptedApplication()
			stored := h.storedEvents(app.Id)
			emittedBefore := len(h.emitter.types())

			require.NoError(t, h.domainEvents.Replay(h.ctx, h.eventOfType(app.Id, events.TypeApplicationSubmitted).Id))

			assert.Len(t, h.emitter.types(), emittedBefore+1)
			assert.Equal(t, string(events.TypeApplicationSubmitted), h.emitter.types()[emittedBefore])
			assert.Len(t, h.storedEvents(app.Id), len(stored))
		})
	}
}

func TestDomainEventReplay_EmitterFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	app, _ := h.acceptedApplication()
	h.emitter.err = errors.New("broker unavailable")

	err := h.domainEvents.Replay(h.ctx, h.eventOfType(app.Id, events.TypeApplicationSubmitted).Id)
	assert.True(t, apperror.IsFatal(err))
}

func TestDomainEventRecord_EmitFailureDoesNotUndoCommit(t *testing.T) {
	h := newHarness(t)
	h.emitter.err = errors.New("broker unavailable")

	app, _ := h.acceptedApplication()

	assert.Equal(t, 1, countType(h.storedEvents(app.Id), events.TypeApplicationSubmitted))
	assert.Equal(t, 1, countType(h.storedEvents(app.Id), events.TypeApplicationAssessed))
	assert.Empty(t, h.emitter.types())
}

func TestDomainEventRecord_EmitFlagAndTriggerSource(t *testing.T) {
	tests := []struct {
		name          string
		emit          bool
		triggerSource entity.TriggerSource
		wantSource    entity.TriggerSource
		wantEmitted   bool
	}{
		{name: "stored without emission", emit: false, triggerSource: entity.TriggerSourceUser, wantSource: entity.TriggerSourceUser},
		{name: "system triggered", emit: true, triggerSource: entity.TriggerSourceSystem, wantSource: entity.TriggerSourceSystem, wantEmitted: true},
		{name: "source defaults to user", emit: true, wantSource: entity.TriggerSourceUser, wantEmitted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			applicationId := uuid.New()
			envelope := events.NewEnvelope(events.ApplicationSubmitted{ApplicationId: applicationId, Person: events.Person{Crn: testCrn}}, fixedNow)

			uow := h.store.NewUnitOfWork(h.ctx)
			require.NoError(t, uow.Begin(h.ctx))
			require.NoError(t, h.domainEvents.Record(h.ctx, uow, RecordRequest{
				Envelope:      envelope,
				Crn:           testCrn,
				ApplicationId: &applicationId,
				Emit:          tt.emit,
				TriggerSource: tt.triggerSource,
			}))
			require.NoError(t, uow.Commit())

			rows := h.storedEvents(applicationId)
			require.Len(t, rows, 1)
			assert.Equal(t, envelope.Id, rows[0].Id)
			assert.Equal(t, tt.wantSource, rows[0].TriggerSource)
			assert.Nil(t, rows[0].TriggeredByUserId)

			if tt.wantEmitted {
				assert.Equal(t, []string{string(events.TypeApplicationSubmitted)}, h.emitter.types())
			} else {
				assert.Empty(t, h.emitter.types())
			}
		})
	}
}

func TestDomainEventListForApplication(t *testing.T) {
	h := newHarness(t)
	app, _ := h.acceptedApplication()

	envelopes, err := h.domainEvents.ListForApplication(h.ctx, app.Id)
	require.NoError(t, err)

	var types []events.Type
	for _, e := range envelopes {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.TypeApplicationSubmitted)
	assert.Contains(t, types, events.TypeApplicationAssessed)
}

type stubSource struct {
	group   string
	handler events.Handler
}

func (s *stubSource) Subscribe(_ context.Context, group string, handler events.Handler) error {
	s.group = group
	s.handler = handler
	return nil
}

func TestConsumer_HandlesEachEventOnce(t *testing.T) {
	source := &stubSource{}
	consumer := NewConsumerService(source, "placement-audit", time.Minute, logger.NewNopLogger(), logger.NewNopLogger())

	var handled []uuid.UUID
	failNext := true
	consumer.On(events.TypeBookingMade, func(_ context.Context, envelope events.Envelope) error {
		if failNext {
			failNext = false
			return errors.New("downstream timeout")
		}
		handled = append(handled, envelope.Id)
		return nil
	})

	ctx := context.Background()
	require.NoError(t, consumer.Consume(ctx))
	assert.Equal(t, "placement-audit", source.group)
	require.NotNil(t, source.handler)

	envelope := events.NewEnvelope(events.BookingMade{BookingId: uuid.New()}, fixedNow)

	assert.Error(t, source.handler(ctx, envelope))
	assert.NoError(t, source.handler(ctx, envelope))
	assert.NoError(t, source.handler(ctx, envelope))
	assert.Equal(t, []uuid.UUID{envelope.Id}, handled)

	other := events.NewEnvelope(events.BookingCancelled{BookingId: uuid.New()}, fixedNow)
	assert.NoError(t, consumer.Handle(ctx, other))
	assert.Len(t, handled, 1)
}
