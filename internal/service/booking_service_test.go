package service

import (
	"errors"
	"testing"
	"time"

	"placement-engine-be/internal/constant"
	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/pkg/calendar"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/status"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(day int) time.Time {
	return calendar.Date(2024, time.January, day)
}

func adHoc(kind entity.ServiceKind, f bedFixture, arrival, departure time.Time) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		Kind:          kind,
		Crn:           testCrn,
		PremisesId:    f.premises.Id,
		BedId:         f.bed.Id,
		ArrivalDate:   arrival,
		DepartureDate: departure,
	}
}

func reason(id uuid.UUID) *uuid.UUID {
	return &id
}

func TestCreateBooking_TurnaroundBlocksFollowingArrivals(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 2)

	_, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)

	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(21), jan(25)))
	conflictErr := requireConflict(t, err)
	assert.Equal(t, "booking", conflictErr.Entity)

	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(23), jan(25)))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
}

func TestCreateBooking_Validation(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	other := h.seedBed(entity.ServiceKindApprovedPremises, 0)

	tests := []struct {
		name  string
		req   *dto.CreateBookingRequest
		field string
	}{
		{
			name:  "departure before arrival",
			req:   adHoc(entity.ServiceKindApprovedPremises, f, jan(20), jan(10)),
			field: "$.departureDate",
		},
		{
			name: "bed from another premises",
			req: &dto.CreateBookingRequest{
				Kind:          entity.ServiceKindApprovedPremises,
				Crn:           testCrn,
				PremisesId:    f.premises.Id,
				BedId:         other.bed.Id,
				ArrivalDate:   jan(10),
				DepartureDate: jan(20),
			},
			field: "$.bedId",
		},
		{
			name:  "missing crn",
			req:   &dto.CreateBookingRequest{Kind: entity.ServiceKindApprovedPremises, PremisesId: f.premises.Id, BedId: f.bed.Id, ArrivalDate: jan(10), DepartureDate: jan(20)},
			field: "$.crn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.bookings.CreateBooking(h.ctx, premisesManager, tt.req)
			require.Error(t, err)
			var validationErr *apperror.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}
}

func TestCreateBooking_TemporaryAccommodationIsProvisionalAndLinksOfflineApplication(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindTemporaryAccommodation, 0)

	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindTemporaryAccommodation, f, jan(10), jan(20)))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusProvisional, booking.Status)
	assert.Nil(t, booking.ApplicationId)
	require.NotNil(t, booking.OfflineApplicationId)
	assert.Equal(t, "A1234AI", booking.NomsNumber)

	second, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindTemporaryAccommodation, f, jan(21), jan(25)))
	require.NoError(t, err)
	assert.Equal(t, *booking.OfflineApplicationId, *second.OfflineApplicationId)

	confirmed, err := h.bookings.RecordConfirmation(h.ctx, premisesManager, booking.Id, &dto.ConfirmationRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, confirmed.Status)

	_, err = h.bookings.RecordConfirmation(h.ctx, premisesManager, booking.Id, &dto.ConfirmationRequest{})
	requireConflict(t, err)
}

func TestCreateBookingFromPlacementRequest_PlacesApplication(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()

	before, err := h.applications.GetStatus(h.ctx, app.Id)
	require.NoError(t, err)
	assert.Equal(t, status.AwaitingPlacement, before)

	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, app.Id, *booking.ApplicationId)
	require.Len(t, booking.Turnarounds, 1)

	after, err := h.applications.GetStatus(h.ctx, app.Id)
	require.NoError(t, err)
	assert.Equal(t, status.Placed, after)

	assert.Equal(t, 1, countType(h.storedEvents(app.Id), events.TypeBookingMade))
	assert.Contains(t, h.emitter.types(), string(events.TypeBookingMade))
	assert.Contains(t, h.dispatcher.sent, sentEmail{address: "hope.house@example.com", templateId: "booking-made"})

	other := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	_, err = h.bookings.CreateBookingFromPlacementRequest(h.ctx, workflowManager, &dto.CreatePlacementBookingRequest{
		PlacementRequestId: pr.Id,
		BedId:              other.bed.Id,
		ArrivalDate:        jan(10),
		DepartureDate:      jan(20),
	})
	requireConflict(t, err)
}

func TestCreateBooking_FailedTransitionLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	emittedBefore := len(h.emitter.types())

	h.people.err = errors.New("connection refused")
	_, err := h.bookings.CreateBookingFromPlacementRequest(h.ctx, workflowManager, &dto.CreatePlacementBookingRequest{
		PlacementRequestId: pr.Id,
		BedId:              f.bed.Id,
		ArrivalDate:        jan(10),
		DepartureDate:      jan(20),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsFatal(err))

	bookings, err := h.store.NewUnitOfWork(h.ctx).BookingRepository().FindByPlacementRequestId(h.ctx, pr.Id)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Zero(t, countType(h.storedEvents(app.Id), events.TypeBookingMade))
	assert.Len(t, h.emitter.types(), emittedBefore)
	assert.Empty(t, h.dispatcher.sent)
}

func TestCreateBooking_RestrictedPersonFallsBackToCrn(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	h.people.err = apperror.Unauthorised("restricted")

	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)
	assert.Empty(t, booking.NomsNumber)
}

func TestEmitDisabled_StoresWithoutEmitting(t *testing.T) {
	h := newHarness(t, func(c *EngineConfig) { c.EmitEnabled = false })
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()

	h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	assert.Equal(t, 1, countType(h.storedEvents(app.Id), events.TypeBookingMade))
	assert.Empty(t, h.emitter.types())
}

func TestCancelBooking_ReturnsApplicationToAwaitingPlacement(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	req := &dto.CancelBookingRequest{Date: jan(8), ReasonId: reason(constant.CancellationReasonPersonNoLongerRequires)}
	result, err := h.bookings.CancelBooking(h.ctx, workflowManager, booking.Id, req)
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusCancelled, result.Booking.Status)
	assert.Equal(t, status.AwaitingPlacement, result.ApplicationStatus)
	assert.Equal(t, jan(8), result.Cancellation.Date)
	assert.Contains(t, h.dispatcher.sent, sentEmail{address: "hope.house@example.com", templateId: "booking-withdrawn"})

	// Re-cancelling an approved premises booking hands back the existing cancellation.
	again, err := h.bookings.CancelBooking(h.ctx, workflowManager, booking.Id, req)
	require.NoError(t, err)
	assert.Equal(t, result.Cancellation.Id, again.Cancellation.Id)
	assert.Equal(t, 1, countType(h.storedEvents(app.Id), events.TypeBookingCancelled))

	// The bed is free again.
	h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))
}

func TestCancelBooking_TemporaryAccommodationRecancelConflicts(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindTemporaryAccommodation, 0)
	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindTemporaryAccommodation, f, jan(10), jan(20)))
	require.NoError(t, err)

	req := &dto.CancelBookingRequest{ReasonId: reason(constant.CancellationReasonPersonNoLongerRequires)}
	result, err := h.bookings.CancelBooking(h.ctx, premisesManager, booking.Id, req)
	require.NoError(t, err)
	assert.Equal(t, status.Status(""), result.ApplicationStatus)
	assert.Equal(t, calendar.Day(fixedNow), result.Cancellation.Date)

	_, err = h.bookings.CancelBooking(h.ctx, premisesManager, booking.Id, req)
	requireConflict(t, err)
}

func TestCancelBooking_ReasonValidation(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   *dto.CancelBookingRequest
		field string
	}{
		{name: "missing reason", req: &dto.CancelBookingRequest{}, field: "$.reason"},
		{name: "unknown reason", req: &dto.CancelBookingRequest{ReasonId: reason(uuid.New())}, field: "$.reason"},
		{name: "reserved reason", req: &dto.CancelBookingRequest{ReasonId: reason(constant.CancellationReasonRelatedApplicationWithdrawn)}, field: "$.reason"},
		{name: "departure reason", req: &dto.CancelBookingRequest{ReasonId: reason(constant.DepartureReasonPlannedMoveOn)}, field: "$.reason"},
		{name: "other without detail", req: &dto.CancelBookingRequest{ReasonId: reason(constant.CancellationReasonOther)}, field: "$.otherReason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.bookings.CancelBooking(h.ctx, premisesManager, booking.Id, tt.req)
			var validationErr *apperror.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}

	assert.Equal(t, entity.BookingStatusConfirmed, h.booking(booking.Id).Status)
}

func TestCancelBooking_AppealReopensPlacementRequest(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	result, err := h.bookings.CancelBooking(h.ctx, workflowManager, booking.Id, &dto.CancelBookingRequest{
		ReasonId: reason(constant.CancellationReasonBookingAppealed),
	})
	require.NoError(t, err)

	require.NotNil(t, result.ReopenedPlacementRequest)
	assert.NotEqual(t, pr.Id, result.ReopenedPlacementRequest.Id)
	assert.Equal(t, pr.Requirements, result.ReopenedPlacementRequest.Requirements)
	assert.Nil(t, result.ReopenedPlacementRequest.BookingId)
	assert.Equal(t, status.AwaitingPlacement, result.ApplicationStatus)

	placementRequests, err := h.store.NewUnitOfWork(h.ctx).PlacementRequestRepository().FindByApplicationId(h.ctx, app.Id)
	require.NoError(t, err)
	assert.Len(t, placementRequests, 2)
}

func TestCreateBookingFromPlacementRequest_RejectsSupersededRequest(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	result, err := h.bookings.CancelBooking(h.ctx, workflowManager, booking.Id, &dto.CancelBookingRequest{
		ReasonId: reason(constant.CancellationReasonBookingAppealed),
	})
	require.NoError(t, err)
	require.NotNil(t, result.ReopenedPlacementRequest)

	_, err = h.bookings.CreateBookingFromPlacementRequest(h.ctx, workflowManager, &dto.CreatePlacementBookingRequest{
		PlacementRequestId: pr.Id,
		BedId:              f.bed.Id,
		ArrivalDate:        jan(10),
		DepartureDate:      jan(20),
	})
	assert.True(t, apperror.IsGeneralValidation(err))
	h.requireStatus(app.Id, status.AwaitingPlacement)

	h.bookPlacementRequest(result.ReopenedPlacementRequest, f.bed, jan(10), jan(20))
	h.requireStatus(app.Id, status.Placed)
	assert.Equal(t, 2, countType(h.storedEvents(app.Id), events.TypeBookingMade))
}

func TestCreateBookingFromPlacementRequest_ServiceKindMismatch(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindTemporaryAccommodation, 0)
	app, pr := h.acceptedApplication()

	_, err := h.bookings.CreateBookingFromPlacementRequest(h.ctx, workflowManager, &dto.CreatePlacementBookingRequest{
		PlacementRequestId: pr.Id,
		BedId:              f.bed.Id,
		ArrivalDate:        jan(10),
		DepartureDate:      jan(20),
	})
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "serviceKindMismatch", validationErr.Fields["$.bedId"])

	assert.Nil(t, h.placementRequest(pr.Id).BookingId)
	h.requireStatus(app.Id, status.AwaitingPlacement)
}

func TestCancelBooking_AppealWithoutReopen(t *testing.T) {
	h := newHarness(t, func(c *EngineConfig) { c.ReopenOnAppeal = false })
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	_, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	result, err := h.bookings.CancelBooking(h.ctx, workflowManager, booking.Id, &dto.CancelBookingRequest{
		ReasonId: reason(constant.CancellationReasonBookingAppealed),
	})
	require.NoError(t, err)
	assert.Nil(t, result.ReopenedPlacementRequest)
}

func TestArrivalAndDeparture(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	_, err := h.bookings.RecordArrival(h.ctx, premisesManager, booking.Id, &dto.ArrivalRequest{
		ArrivalDate:           jan(10),
		ExpectedDepartureDate: jan(9),
	})
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)

	arrived, err := h.bookings.RecordArrival(h.ctx, premisesManager, booking.Id, &dto.ArrivalRequest{
		ArrivalDate:           jan(11),
		ExpectedDepartureDate: jan(20),
		KeyWorkerStaffCode:    "KW1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusArrived, arrived.Status)
	assert.Equal(t, jan(11), arrived.ArrivalDate)
	assert.Equal(t, jan(10), arrived.OriginalArrivalDate)

	_, err = h.bookings.RecordArrival(h.ctx, premisesManager, booking.Id, &dto.ArrivalRequest{ArrivalDate: jan(11), ExpectedDepartureDate: jan(20)})
	requireConflict(t, err)
	_, err = h.bookings.RecordNonArrival(h.ctx, premisesManager, booking.Id, &dto.NonArrivalRequest{Date: jan(11), ReasonId: constant.NonArrivalReasonRecalled})
	requireConflict(t, err)

	departure := &dto.DepartureRequest{
		DateTime: time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC),
		ReasonId: constant.DepartureReasonPlannedMoveOn,
	}
	_, err = h.bookings.RecordDeparture(h.ctx, premisesManager, booking.Id, departure)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "$.destinationProviderId")

	departure.DestinationProviderId = reason(constant.DestinationProviderProbation)
	departure.MoveOnCategoryId = reason(constant.MoveOnCategoryNotApplicable)
	departed, err := h.bookings.RecordDeparture(h.ctx, premisesManager, booking.Id, departure)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusDeparted, departed.Status)
	assert.Equal(t, jan(15), departed.DepartureDate)

	_, err = h.bookings.RecordDeparture(h.ctx, premisesManager, booking.Id, departure)
	requireConflict(t, err)

	_, err = h.bookings.CancelBooking(h.ctx, premisesManager, booking.Id, &dto.CancelBookingRequest{ReasonId: reason(constant.CancellationReasonPersonNoLongerRequires)})
	assert.True(t, apperror.IsGeneralValidation(err))

	stored := h.storedEvents(app.Id)
	assert.Equal(t, 1, countType(stored, events.TypePersonArrived))
	assert.Equal(t, 1, countType(stored, events.TypePersonDeparted))
}

func TestArrivedDepartedEventsCanBeDisabled(t *testing.T) {
	h := newHarness(t, func(c *EngineConfig) { c.ArrivedDepartedDisabled = true })
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	app, pr := h.acceptedApplication()
	booking := h.bookPlacementRequest(pr, f.bed, jan(10), jan(20))

	_, err := h.bookings.RecordArrival(h.ctx, premisesManager, booking.Id, &dto.ArrivalRequest{ArrivalDate: jan(10), ExpectedDepartureDate: jan(20)})
	require.NoError(t, err)

	assert.Zero(t, countType(h.storedEvents(app.Id), events.TypePersonArrived))
	assert.NotContains(t, h.emitter.types(), string(events.TypePersonArrived))
}

func TestArrival_LengtheningStayRechecksConflicts(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	first, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)
	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(20), jan(25)))
	require.NoError(t, err)

	_, err = h.bookings.RecordArrival(h.ctx, premisesManager, first.Id, &dto.ArrivalRequest{ArrivalDate: jan(10), ExpectedDepartureDate: jan(22)})
	requireConflict(t, err)

	_, err = h.bookings.RecordArrival(h.ctx, premisesManager, first.Id, &dto.ArrivalRequest{ArrivalDate: jan(10), ExpectedDepartureDate: jan(20)})
	require.NoError(t, err)
}

func TestRecordNonArrival(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)

	_, err = h.bookings.RecordNonArrival(h.ctx, premisesManager, booking.Id, &dto.NonArrivalRequest{Date: jan(9), ReasonId: constant.NonArrivalReasonRecalled})
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "$.date")

	notArrived, err := h.bookings.RecordNonArrival(h.ctx, premisesManager, booking.Id, &dto.NonArrivalRequest{Date: jan(10), ReasonId: constant.NonArrivalReasonRecalled})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusNotArrived, notArrived.Status)

	// A non-arrived booking no longer holds the bed.
	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)
}

func TestExtensionAndDateChange(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)
	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(25), jan(30)))
	require.NoError(t, err)

	extended, err := h.bookings.RecordExtension(h.ctx, premisesManager, booking.Id, &dto.ExtensionRequest{NewDepartureDate: jan(24)})
	require.NoError(t, err)
	assert.Equal(t, jan(24), extended.DepartureDate)
	require.Len(t, extended.Extensions, 1)
	assert.Equal(t, jan(20), extended.Extensions[0].PreviousDepartureDate)

	_, err = h.bookings.RecordExtension(h.ctx, premisesManager, booking.Id, &dto.ExtensionRequest{NewDepartureDate: jan(26)})
	requireConflict(t, err)

	newArrival := jan(12)
	changed, err := h.bookings.RecordDateChange(h.ctx, premisesManager, booking.Id, &dto.DateChangeRequest{NewArrivalDate: &newArrival})
	require.NoError(t, err)
	assert.Equal(t, jan(12), changed.ArrivalDate)
	assert.Equal(t, jan(24), changed.DepartureDate)

	_, err = h.bookings.RecordArrival(h.ctx, premisesManager, booking.Id, &dto.ArrivalRequest{ArrivalDate: jan(12), ExpectedDepartureDate: jan(23)})
	require.NoError(t, err)
	_, err = h.bookings.RecordExtension(h.ctx, premisesManager, booking.Id, &dto.ExtensionRequest{NewDepartureDate: jan(24)})
	require.NoError(t, err)
	require.NotNil(t, h.booking(booking.Id).Arrival)
	assert.Equal(t, jan(24), h.booking(booking.Id).Arrival.ExpectedDepartureDate)

	_, err = h.bookings.RecordDateChange(h.ctx, premisesManager, booking.Id, &dto.DateChangeRequest{NewArrivalDate: &newArrival})
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "$.newArrivalDate")
}

func TestRecordTurnaround(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindTemporaryAccommodation, 0)
	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindTemporaryAccommodation, f, jan(10), jan(20)))
	require.NoError(t, err)
	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindTemporaryAccommodation, f, jan(23), jan(30)))
	require.NoError(t, err)

	updated, err := h.bookings.RecordTurnaround(h.ctx, premisesManager, booking.Id, &dto.TurnaroundRequest{WorkingDays: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TurnaroundWorkingDays())

	_, err = h.bookings.RecordTurnaround(h.ctx, premisesManager, booking.Id, &dto.TurnaroundRequest{WorkingDays: 3})
	requireConflict(t, err)
	assert.Equal(t, 2, h.booking(booking.Id).TurnaroundWorkingDays())
}

func TestMoveBed(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)
	sameHouse := &entity.Bed{PremisesId: f.premises.Id, Name: "Bed 2"}
	require.NoError(t, h.premises.CreateBed(h.ctx, sameHouse))
	elsewhere := h.seedBed(entity.ServiceKindApprovedPremises, 0)

	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)

	_, err = h.bookings.MoveBed(h.ctx, premisesManager, booking.Id, &dto.BedMoveRequest{NewBedId: elsewhere.bed.Id})
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "$.bedId")

	moved, err := h.bookings.MoveBed(h.ctx, premisesManager, booking.Id, &dto.BedMoveRequest{NewBedId: sameHouse.Id, Notes: "boiler"})
	require.NoError(t, err)
	assert.Equal(t, sameHouse.Id, *moved.BedId)
	require.Len(t, moved.BedMoves, 1)
	assert.Equal(t, f.bed.Id, *moved.BedMoves[0].PreviousBedId)
	assert.Equal(t, entity.BookingStatusConfirmed, moved.Status)

	// The original bed is free again.
	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)
}
