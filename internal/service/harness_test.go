package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/offender"
	"placement-engine-be/internal/repository/memory"
	"placement-engine-be/pkg/calendar"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/conflict"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testCrn = "X320741"

var (
	applicant       = entity.Actor{Id: uuid.MustParse("0f1b5a3e-3c48-4e4c-8d6f-1c7d0f6f0a01"), Roles: []entity.UserRole{entity.UserRoleApplicant}}
	assessor        = entity.Actor{Id: uuid.MustParse("0f1b5a3e-3c48-4e4c-8d6f-1c7d0f6f0a02"), Roles: []entity.UserRole{entity.UserRoleAssessor}}
	workflowManager = entity.Actor{Id: uuid.MustParse("0f1b5a3e-3c48-4e4c-8d6f-1c7d0f6f0a03"), Roles: []entity.UserRole{entity.UserRoleWorkflowManager}}
	premisesManager = entity.Actor{Id: uuid.MustParse("0f1b5a3e-3c48-4e4c-8d6f-1c7d0f6f0a04"), Roles: []entity.UserRole{entity.UserRoleManager}}
)

var fixedNow = time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

type fakePeople struct {
	err error
}

func (f *fakePeople) GetOffenderByCrn(_ context.Context, crn string) (*offender.PersonDetails, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &offender.PersonDetails{Crn: crn, NomsNumber: "A1234AI", Name: "Jamie Doe"}, nil
}

type fakeStaff struct{}

func (fakeStaff) GetStaffByUserId(_ context.Context, userId uuid.UUID) (*offender.StaffDetails, error) {
	return &offender.StaffDetails{UserId: userId, StaffCode: "STAFF" + userId.String()[:4], Name: "Staff Member"}, nil
}

type recordingEmitter struct {
	mu      sync.Mutex
	emitted []events.Event
	err     error
}

func (e *recordingEmitter) Emit(_ context.Context, event events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.emitted = append(e.emitted, event)
	return nil
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.emitted {
		out = append(out, ev.EventType())
	}
	return out
}

type sentEmail struct {
	address    string
	templateId string
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (d *recordingDispatcher) SendEmail(address, templateId string, _ map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentEmail{address: address, templateId: templateId})
	return nil
}

type harness struct {
	t          *testing.T
	ctx        context.Context
	store      *memory.Store
	emitter    *recordingEmitter
	dispatcher *recordingDispatcher
	people     *fakePeople

	domainEvents IDomainEventService
	applications IApplicationService
	assessments  IAssessmentService
	placements   IPlacementService
	bookings     IBookingService
	withdrawals  IWithdrawalService
	premises     IPremisesService
}

func newHarness(t *testing.T, configure ...func(*EngineConfig)) *harness {
	t.Helper()

	config := EngineConfig{
		EmitEnabled:                true,
		ReopenOnAppeal:             true,
		BookingMadeTemplateId:      "booking-made",
		BookingWithdrawnTemplateId: "booking-withdrawn",
		Clock:                      func() time.Time { return fixedNow },
	}
	for _, fn := range configure {
		fn(&config)
	}

	h := &harness{
		t:          t,
		ctx:        context.Background(),
		store:      memory.NewStore(),
		emitter:    &recordingEmitter{},
		dispatcher: &recordingDispatcher{},
		people:     &fakePeople{},
	}
	log := logger.NewNopLogger()
	detector := conflict.NewDetector(calendar.New(calendar.WithWeekendDays()))

	h.domainEvents = NewDomainEventService(h.store, h.emitter, config, log)
	recorder := NewEventRecorder(h.domainEvents, h.people, fakeStaff{})
	notifier := NewBookingNotifier(h.dispatcher, config, log)

	h.applications = NewApplicationService(h.store, recorder, config, log)
	h.assessments = NewAssessmentService(h.store, recorder, config, log)
	h.placements = NewPlacementService(h.store, recorder, config, log)
	h.bookings = NewBookingService(h.store, recorder, notifier, detector, config, log)
	h.withdrawals = NewWithdrawalService(h.store, h.bookings, recorder, config, log)
	h.premises = NewPremisesService(h.store, detector, config, log)

	_, err := h.premises.SeedReferenceData(h.ctx)
	require.NoError(t, err)
	return h
}

type bedFixture struct {
	premises *entity.Premises
	bed      *entity.Bed
}

func (h *harness) seedBed(kind entity.ServiceKind, turnaround int) bedFixture {
	h.t.Helper()
	premises := &entity.Premises{
		Kind:                  kind,
		Name:                  "Hope House",
		EmailAddress:          "hope.house@example.com",
		TurnaroundWorkingDays: turnaround,
	}
	require.NoError(h.t, h.premises.CreatePremises(h.ctx, premises))
	bed := &entity.Bed{PremisesId: premises.Id, Name: "Bed 1", RoomName: "Room 1"}
	require.NoError(h.t, h.premises.CreateBed(h.ctx, bed))
	return bedFixture{premises: premises, bed: bed}
}

// acceptedApplication walks an approved premises application to an accepted assessment with an
// initial placement request.
func (h *harness) acceptedApplication() (*entity.Application, *entity.PlacementRequest) {
	h.t.Helper()
	app, err := h.applications.CreateApplication(h.ctx, applicant, &dto.CreateApplicationRequest{
		Kind: entity.ServiceKindApprovedPremises,
		Crn:  testCrn,
	})
	require.NoError(h.t, err)
	_, err = h.applications.SubmitApplication(h.ctx, applicant, app.Id)
	require.NoError(h.t, err)

	assessments, err := h.store.NewUnitOfWork(h.ctx).AssessmentRepository().FindByApplicationId(h.ctx, app.Id)
	require.NoError(h.t, err)
	require.Len(h.t, assessments, 1)

	arrival := calendar.Date(2024, time.February, 1)
	_, pr, err := h.assessments.Accept(h.ctx, assessor, assessments[0].Id, &dto.AcceptAssessmentRequest{
		Requirements:    dto.PlacementRequirements{Postcode: "LS1", RadiusMiles: 50, ApType: "normal"},
		ExpectedArrival: &arrival,
		Duration:        84,
	})
	require.NoError(h.t, err)
	require.NotNil(h.t, pr)
	return app, pr
}

func (h *harness) bookPlacementRequest(pr *entity.PlacementRequest, bed *entity.Bed, arrival, departure time.Time) *entity.Booking {
	h.t.Helper()
	booking, err := h.bookings.CreateBookingFromPlacementRequest(h.ctx, workflowManager, &dto.CreatePlacementBookingRequest{
		PlacementRequestId: pr.Id,
		BedId:              bed.Id,
		ArrivalDate:        arrival,
		DepartureDate:      departure,
	})
	require.NoError(h.t, err)
	return booking
}

func (h *harness) booking(id uuid.UUID) *entity.Booking {
	h.t.Helper()
	b, err := h.store.NewUnitOfWork(h.ctx).BookingRepository().FindById(h.ctx, id)
	require.NoError(h.t, err)
	require.NotNil(h.t, b)
	return b
}

func (h *harness) storedEvents(applicationId uuid.UUID) []*entity.DomainEvent {
	h.t.Helper()
	rows, err := h.store.NewUnitOfWork(h.ctx).DomainEventRepository().FindByApplicationId(h.ctx, applicationId)
	require.NoError(h.t, err)
	return rows
}

func (h *harness) eventOfType(applicationId uuid.UUID, eventType events.Type) *entity.DomainEvent {
	h.t.Helper()
	for _, r := range h.storedEvents(applicationId) {
		if r.Type == string(eventType) {
			return r
		}
	}
	h.t.Fatalf("no %s event stored for application %s", eventType, applicationId)
	return nil
}

func countType(rows []*entity.DomainEvent, eventType events.Type) int {
	n := 0
	for _, r := range rows {
		if r.Type == string(eventType) {
			n++
		}
	}
	return n
}

func requireConflict(t *testing.T, err error) *apperror.ConflictError {
	t.Helper()
	require.Error(t, err)
	var conflictErr *apperror.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	return conflictErr
}
