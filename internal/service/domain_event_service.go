package service

import (
	"context"
	"encoding/json"
	"fmt"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/events"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

const moduleDomainEvents = "DOMAIN_EVENTS"

// RecordRequest is one event to append. The id fields index the row for later lookup.
type RecordRequest struct {
	Envelope           events.Envelope
	Crn                string
	ApplicationId      *uuid.UUID
	AssessmentId       *uuid.UUID
	BookingId          *uuid.UUID
	PlacementRequestId *uuid.UUID
	Emit               bool
	TriggerSource      entity.TriggerSource
	TriggeredBy        *uuid.UUID
}

type IDomainEventService interface {
	// Record appends the event in the caller's transaction. Emission happens after commit.
	Record(ctx context.Context, uow unitofwork.UnitOfWork, req RecordRequest) error
	// Get loads an event. A non-empty expected type must match the stored type or its alias.
	Get(ctx context.Context, id uuid.UUID, expected events.Type) (*events.Envelope, error)
	// Replay re-emits a stored event. Nothing is written.
	Replay(ctx context.Context, id uuid.UUID) error
	ListForApplication(ctx context.Context, applicationId uuid.UUID) ([]*events.Envelope, error)
}

type domainEventService struct {
	uowFactory unitofwork.RepositoryFactory
	emitter    events.Emitter
	config     EngineConfig
	logger     logger.ILogger
}

func NewDomainEventService(
	uowFactory unitofwork.RepositoryFactory,
	emitter events.Emitter,
	config EngineConfig,
	logger logger.ILogger,
) IDomainEventService {
	return &domainEventService{
		uowFactory: uowFactory,
		emitter:    emitter,
		config:     config,
		logger:     logger,
	}
}

func (s *domainEventService) Record(ctx context.Context, uow unitofwork.UnitOfWork, req RecordRequest) error {
	data, err := json.Marshal(req.Envelope.EventDetails)
	if err != nil {
		return errors.Wrap(err, "marshal event details")
	}

	triggerSource := req.TriggerSource
	if triggerSource == "" {
		triggerSource = entity.TriggerSourceUser
	}

	row := &entity.DomainEvent{
		Id:                 req.Envelope.Id,
		Type:               string(req.Envelope.Type),
		ApplicationId:      req.ApplicationId,
		AssessmentId:       req.AssessmentId,
		BookingId:          req.BookingId,
		PlacementRequestId: req.PlacementRequestId,
		Crn:                req.Crn,
		OccurredAt:         req.Envelope.OccurredAt,
		CreatedAt:          s.config.now(),
		SchemaVersion:      events.CurrentSchemaVersion,
		Data:               data,
		TriggerSource:      triggerSource,
		TriggeredByUserId:  req.TriggeredBy,
	}
	if err := uow.DomainEventRepository().Create(ctx, row); err != nil {
		return err
	}

	if !req.Emit || !s.config.EmitEnabled {
		return nil
	}

	envelope := req.Envelope
	uow.AfterCommit(func(ctx context.Context) {
		if err := s.emitter.Emit(ctx, envelope); err != nil {
			s.logger.Error(moduleDomainEvents, "Failed to emit domain event", map[string]interface{}{
				"event_id":   envelope.Id.String(),
				"event_type": string(envelope.Type),
				"error":      err.Error(),
			})
			return
		}
		s.logger.Debug(moduleDomainEvents, "Domain event emitted", map[string]interface{}{
			"event_id":   envelope.Id.String(),
			"event_type": string(envelope.Type),
		})
	})
	return nil
}

func (s *domainEventService) Get(ctx context.Context, id uuid.UUID, expected events.Type) (*events.Envelope, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	row, err := uow.DomainEventRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperror.NotFound("domain event", id)
	}
	if expected != "" && !events.Accepts(events.Type(row.Type), expected) {
		return nil, apperror.GeneralValidation(fmt.Sprintf("domain event %s is of type %s, not %s", id, row.Type, expected))
	}
	return toEnvelope(row)
}

func (s *domainEventService) Replay(ctx context.Context, id uuid.UUID) error {
	envelope, err := s.Get(ctx, id, "")
	if err != nil {
		return err
	}

	if !s.config.EmitEnabled {
		s.logger.Warn(moduleDomainEvents, "Replaying domain event while emission is disabled", map[string]interface{}{
			"event_id": id.String(),
		})
	}

	if err := s.emitter.Emit(ctx, *envelope); err != nil {
		return apperror.Fatal(err, "replay domain event")
	}

	s.logger.Info(moduleDomainEvents, "Domain event replayed", map[string]interface{}{
		"event_id":   id.String(),
		"event_type": string(envelope.Type),
	})
	return nil
}

func (s *domainEventService) ListForApplication(ctx context.Context, applicationId uuid.UUID) ([]*events.Envelope, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.DomainEventRepository().FindByApplicationId(ctx, applicationId)
	if err != nil {
		return nil, err
	}

	out := make([]*events.Envelope, 0, len(rows))
	for _, row := range rows {
		envelope, err := toEnvelope(row)
		if err != nil {
			return nil, err
		}
		out = append(out, envelope)
	}
	return out, nil
}

func toEnvelope(row *entity.DomainEvent) (*events.Envelope, error) {
	details, err := events.DecodeDetails(events.Type(row.Type), row.SchemaVersion, row.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode domain event %s", row.Id)
	}
	return &events.Envelope{
		Id:           row.Id,
		OccurredAt:   row.OccurredAt,
		Type:         details.DetailsType(),
		EventDetails: details,
	}, nil
}
