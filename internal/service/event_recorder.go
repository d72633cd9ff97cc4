package service

import (
	"context"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/offender"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/events"

	"github.com/google/uuid"
)

// eventLinks indexes a recorded event against the entities it concerns.
type eventLinks struct {
	Crn                string
	ApplicationId      *uuid.UUID
	AssessmentId       *uuid.UUID
	BookingId          *uuid.UUID
	PlacementRequestId *uuid.UUID
}

// EventRecorder resolves people and staff for payloads and appends events.
type EventRecorder struct {
	domainEvents IDomainEventService
	people       offender.Lookup
	staff        offender.StaffLookup
}

func NewEventRecorder(domainEvents IDomainEventService, people offender.Lookup, staff offender.StaffLookup) *EventRecorder {
	return &EventRecorder{domainEvents: domainEvents, people: people, staff: staff}
}

// person resolves the person for a payload. A restricted or unknown person is still referenced
// by crn; any other lookup failure aborts the transition.
func (r *EventRecorder) person(ctx context.Context, crn string) (events.Person, error) {
	details, err := r.people.GetOffenderByCrn(ctx, crn)
	if err != nil {
		if apperror.IsUnauthorised(err) || apperror.IsNotFound(err) {
			return events.Person{Crn: crn}, nil
		}
		return events.Person{}, apperror.Fatal(err, "look up person "+crn)
	}
	return events.Person{Crn: crn, NomsNumber: details.NomsNumber, Name: details.Name}, nil
}

func (r *EventRecorder) staffMember(ctx context.Context, userId uuid.UUID) (events.StaffMember, error) {
	details, err := r.staff.GetStaffByUserId(ctx, userId)
	if err != nil {
		return events.StaffMember{}, apperror.Fatal(err, "look up staff "+userId.String())
	}
	id := userId
	return events.StaffMember{UserId: &id, StaffCode: details.StaffCode, Name: details.Name}, nil
}

func (r *EventRecorder) record(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	details events.Details,
	occurredAt time.Time,
	links eventLinks,
	actor entity.Actor,
) (events.Envelope, error) {
	envelope := events.NewEnvelope(details, occurredAt)
	triggeredBy := actor.Id
	err := r.domainEvents.Record(ctx, uow, RecordRequest{
		Envelope:           envelope,
		Crn:                links.Crn,
		ApplicationId:      links.ApplicationId,
		AssessmentId:       links.AssessmentId,
		BookingId:          links.BookingId,
		PlacementRequestId: links.PlacementRequestId,
		Emit:               true,
		TriggerSource:      entity.TriggerSourceUser,
		TriggeredBy:        &triggeredBy,
	})
	return envelope, err
}
