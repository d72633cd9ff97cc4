package service

import (
	"context"
	"time"

	"placement-engine-be/internal/constant"
	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/calendar"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/conflict"
	"placement-engine-be/pkg/placement/status"

	"github.com/google/uuid"
)

const moduleBooking = "BOOKING"

// CancellationResult is what a cancellation leaves behind. ApplicationStatus is empty for
// bookings without an online application.
type CancellationResult struct {
	Booking                  *entity.Booking
	Cancellation             *entity.Cancellation
	ApplicationStatus        status.Status
	ReopenedPlacementRequest *entity.PlacementRequest
}

type IBookingService interface {
	CreateBookingFromPlacementRequest(ctx context.Context, actor entity.Actor, req *dto.CreatePlacementBookingRequest) (*entity.Booking, error)
	CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*entity.Booking, error)
	RecordConfirmation(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ConfirmationRequest) (*entity.Booking, error)
	RecordArrival(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ArrivalRequest) (*entity.Booking, error)
	RecordNonArrival(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.NonArrivalRequest) (*entity.Booking, error)
	RecordDeparture(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.DepartureRequest) (*entity.Booking, error)
	RecordExtension(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ExtensionRequest) (*entity.Booking, error)
	RecordDateChange(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.DateChangeRequest) (*entity.Booking, error)
	RecordTurnaround(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.TurnaroundRequest) (*entity.Booking, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.CancelBookingRequest) (*CancellationResult, error)
	// CancelInUnitOfWork cancels inside the caller's transaction. The withdrawal cascade uses it
	// so the whole chain commits or rolls back together.
	CancelInUnitOfWork(ctx context.Context, uow unitofwork.UnitOfWork, booking *entity.Booking, req *dto.CancelBookingRequest, wctx entity.WithdrawalContext) (*CancellationResult, error)
	MoveBed(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.BedMoveRequest) (*entity.Booking, error)
}

type bookingService struct {
	uowFactory unitofwork.RepositoryFactory
	recorder   *EventRecorder
	notifier   *BookingNotifier
	detector   *conflict.Detector
	config     EngineConfig
	logger     logger.ILogger
}

func NewBookingService(
	uowFactory unitofwork.RepositoryFactory,
	recorder *EventRecorder,
	notifier *BookingNotifier,
	detector *conflict.Detector,
	config EngineConfig,
	logger logger.ILogger,
) IBookingService {
	return &bookingService{
		uowFactory: uowFactory,
		recorder:   recorder,
		notifier:   notifier,
		detector:   detector,
		config:     config,
		logger:     logger,
	}
}

func (s *bookingService) CreateBookingFromPlacementRequest(ctx context.Context, actor entity.Actor, req *dto.CreatePlacementBookingRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if calendar.Day(req.DepartureDate).Before(calendar.Day(req.ArrivalDate)) {
		v.Add("$.departureDate", "beforeBookingArrivalDate")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	pr, err := uow.PlacementRequestRepository().FindByIdForUpdate(ctx, req.PlacementRequestId)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, apperror.NotFound("placement request", req.PlacementRequestId)
	}
	if pr.IsWithdrawn {
		return nil, apperror.GeneralValidation("this placement request has been withdrawn")
	}
	if pr.ReallocatedAt != nil {
		return nil, apperror.GeneralValidation("this placement request has been superseded")
	}
	existing, err := uow.BookingRepository().FindByPlacementRequestId(ctx, pr.Id)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if !b.IsCancelled() {
			return nil, apperror.Conflict("booking", b.Id, "placement request already has a booking")
		}
	}

	app, err := uow.ApplicationRepository().FindById(ctx, pr.ApplicationId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application", pr.ApplicationId)
	}

	bed, premises, err := s.lockBed(ctx, uow, req.BedId, nil)
	if err != nil {
		return nil, err
	}
	if premises.Kind != app.Kind {
		v.Add("$.bedId", "serviceKindMismatch")
		return nil, v.Err()
	}

	person, err := s.recorder.person(ctx, app.Crn)
	if err != nil {
		return nil, err
	}

	now := s.config.now()
	booking := s.newBooking(premises, bed, app.Kind, app.Crn, person, req.ArrivalDate, req.DepartureDate, now)
	booking.Status = entity.BookingStatusConfirmed
	booking.ApplicationId = &app.Id
	booking.PlacementRequestId = &pr.Id

	if err := s.detector.Check(ctx, uow, conflict.Candidate{
		BedId:                 bed.Id,
		Arrival:               booking.ArrivalDate,
		Departure:             booking.DepartureDate,
		TurnaroundWorkingDays: premises.TurnaroundWorkingDays,
	}); err != nil {
		return nil, err
	}

	if err := uow.BookingRepository().Create(ctx, booking); err != nil {
		return nil, err
	}
	pr.BookingId = &booking.Id
	if err := uow.PlacementRequestRepository().Update(ctx, pr); err != nil {
		return nil, err
	}

	if err := s.recordBookingMade(ctx, uow, actor, premises, booking, person, now); err != nil {
		return nil, err
	}
	uow.AfterCommit(func(ctx context.Context) {
		s.notifier.send(s.config.BookingMadeTemplateId, premises, booking, person)
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Booking made from placement request", map[string]interface{}{
		"booking_id":           booking.Id.String(),
		"placement_request_id": pr.Id.String(),
		"bed_id":               bed.Id.String(),
	})
	return booking, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, actor entity.Actor, req *dto.CreateBookingRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if calendar.Day(req.DepartureDate).Before(calendar.Day(req.ArrivalDate)) {
		v.Add("$.departureDate", "beforeBookingArrivalDate")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	bed, premises, err := s.lockBed(ctx, uow, req.BedId, &req.PremisesId)
	if err != nil {
		return nil, err
	}
	if premises.Kind != req.Kind {
		v.Add("$.premisesId", "serviceKindMismatch")
		return nil, v.Err()
	}

	person, err := s.recorder.person(ctx, req.Crn)
	if err != nil {
		return nil, err
	}

	now := s.config.now()
	booking := s.newBooking(premises, bed, req.Kind, req.Crn, person, req.ArrivalDate, req.DepartureDate, now)
	if req.Kind == entity.ServiceKindApprovedPremises {
		booking.Status = entity.BookingStatusConfirmed
	} else {
		booking.Status = entity.BookingStatusProvisional
	}

	if err := s.linkApplication(ctx, uow, booking, req.EventNumber, now); err != nil {
		return nil, err
	}

	if err := s.detector.Check(ctx, uow, conflict.Candidate{
		BedId:                 bed.Id,
		Arrival:               booking.ArrivalDate,
		Departure:             booking.DepartureDate,
		TurnaroundWorkingDays: premises.TurnaroundWorkingDays,
	}); err != nil {
		return nil, err
	}

	if err := uow.BookingRepository().Create(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.recordBookingMade(ctx, uow, actor, premises, booking, person, now); err != nil {
		return nil, err
	}
	uow.AfterCommit(func(ctx context.Context) {
		s.notifier.send(s.config.BookingMadeTemplateId, premises, booking, person)
	})

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Booking made", map[string]interface{}{
		"booking_id": booking.Id.String(),
		"kind":       string(booking.Kind),
		"status":     string(booking.Status),
	})
	return booking, nil
}

// linkApplication attaches the newest submitted online application of the same kind, falling
// back to an offline application, which is created when none exists.
func (s *bookingService) linkApplication(ctx context.Context, uow unitofwork.UnitOfWork, booking *entity.Booking, eventNumber string, now time.Time) error {
	app, err := uow.ApplicationRepository().FindLatestSubmitted(ctx, booking.Crn, booking.Kind)
	if err != nil {
		return err
	}
	if app != nil {
		booking.ApplicationId = &app.Id
		return nil
	}

	offline, err := uow.OfflineApplicationRepository().FindLatestByCrn(ctx, booking.Crn, booking.Kind)
	if err != nil {
		return err
	}
	if offline == nil {
		offline = &entity.OfflineApplication{
			Id:          uuid.New(),
			Kind:        booking.Kind,
			Crn:         booking.Crn,
			EventNumber: eventNumber,
			CreatedAt:   now,
		}
		if err := uow.OfflineApplicationRepository().Create(ctx, offline); err != nil {
			return err
		}
	}
	booking.OfflineApplicationId = &offline.Id
	return nil
}

func (s *bookingService) newBooking(
	premises *entity.Premises,
	bed *entity.Bed,
	kind entity.ServiceKind,
	crn string,
	person events.Person,
	arrival, departure time.Time,
	now time.Time,
) *entity.Booking {
	bookingId := uuid.New()
	bedId := bed.Id
	arrival, departure = calendar.Day(arrival), calendar.Day(departure)
	return &entity.Booking{
		Id:                    bookingId,
		Kind:                  kind,
		Crn:                   crn,
		NomsNumber:            person.NomsNumber,
		PremisesId:            premises.Id,
		BedId:                 &bedId,
		ArrivalDate:           arrival,
		DepartureDate:         departure,
		OriginalArrivalDate:   arrival,
		OriginalDepartureDate: departure,
		CreatedAt:             now,
		Turnarounds: []entity.Turnaround{{
			Id:              uuid.New(),
			BookingId:       bookingId,
			WorkingDayCount: premises.TurnaroundWorkingDays,
			CreatedAt:       now,
		}},
	}
}

// lockBed takes the bed row lock and loads its premises. When premisesId is given the bed must
// belong to it.
func (s *bookingService) lockBed(ctx context.Context, uow unitofwork.UnitOfWork, bedId uuid.UUID, premisesId *uuid.UUID) (*entity.Bed, *entity.Premises, error) {
	v := apperror.NewValidationErrors()

	bed, err := uow.BedRepository().FindByIdForUpdate(ctx, bedId)
	if err != nil {
		return nil, nil, err
	}
	if bed == nil {
		v.Add("$.bedId", "doesNotExist")
		return nil, nil, v.Err()
	}
	if premisesId != nil && bed.PremisesId != *premisesId {
		v.Add("$.bedId", "mustBelongToPremises")
		return nil, nil, v.Err()
	}

	premises, err := uow.PremisesRepository().FindById(ctx, bed.PremisesId)
	if err != nil {
		return nil, nil, err
	}
	if premises == nil {
		return nil, nil, apperror.NotFound("premises", bed.PremisesId)
	}
	return bed, premises, nil
}

func (s *bookingService) recordBookingMade(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	actor entity.Actor,
	premises *entity.Premises,
	booking *entity.Booking,
	person events.Person,
	now time.Time,
) error {
	bookedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return err
	}
	_, err = s.recorder.record(ctx, uow, events.BookingMade{
		BookingId:     booking.Id,
		ApplicationId: booking.ApplicationId,
		ServiceKind:   string(booking.Kind),
		Person:        person,
		PremisesId:    premises.Id,
		BedId:         booking.BedId,
		ArrivalOn:     dateOnly(booking.ArrivalDate),
		DepartureOn:   dateOnly(booking.DepartureDate),
		Status:        string(booking.Status),
		CreatedAt:     now,
		BookedBy:      bookedBy,
	}, now, bookingLinks(booking), actor)
	return err
}

func bookingLinks(b *entity.Booking) eventLinks {
	id := b.Id
	return eventLinks{
		Crn:                b.Crn,
		ApplicationId:      b.ApplicationId,
		BookingId:          &id,
		PlacementRequestId: b.PlacementRequestId,
	}
}

// lockBooking opens a transaction and loads the booking under lock. The caller owns the
// returned unit of work and must roll it back.
func (s *bookingService) lockBooking(ctx context.Context, bookingId uuid.UUID) (unitofwork.UnitOfWork, *entity.Booking, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	booking, err := uow.BookingRepository().FindByIdForUpdate(ctx, bookingId)
	if err != nil {
		uow.Rollback()
		return nil, nil, err
	}
	if booking == nil {
		uow.Rollback()
		return nil, nil, apperror.NotFound("booking", bookingId)
	}
	return uow, booking, nil
}

// recheck validates the booking's bed against a changed window, ignoring the booking itself.
func (s *bookingService) recheck(ctx context.Context, uow unitofwork.UnitOfWork, booking *entity.Booking, arrival, departure time.Time, turnaround int) error {
	if booking.BedId == nil {
		return nil
	}
	if _, err := uow.BedRepository().FindByIdForUpdate(ctx, *booking.BedId); err != nil {
		return err
	}
	return s.detector.Check(ctx, uow, conflict.Candidate{
		BedId:                 *booking.BedId,
		Arrival:               arrival,
		Departure:             departure,
		TurnaroundWorkingDays: turnaround,
		ExcludeBookingId:      &booking.Id,
	})
}

func (s *bookingService) RecordConfirmation(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ConfirmationRequest) (*entity.Booking, error) {
	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Confirmation != nil {
		return nil, apperror.Conflict("confirmation", booking.Confirmation.Id, "this booking has already been confirmed")
	}
	if booking.Status != entity.BookingStatusProvisional {
		return nil, apperror.GeneralValidation("only a provisional booking can be confirmed")
	}

	now := s.config.now()
	booking.Confirmation = &entity.Confirmation{
		Id:        uuid.New(),
		BookingId: booking.Id,
		DateTime:  now,
		Notes:     req.Notes,
		CreatedAt: now,
	}
	booking.Status = entity.BookingStatusConfirmed
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	person, err := s.recorder.person(ctx, booking.Crn)
	if err != nil {
		return nil, err
	}
	confirmedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	if _, err := s.recorder.record(ctx, uow, events.BookingConfirmed{
		BookingId:   booking.Id,
		Person:      person,
		ConfirmedAt: now,
		ConfirmedBy: confirmedBy,
	}, now, bookingLinks(booking), actor); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) RecordArrival(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ArrivalRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	arrival, expectedDeparture := calendar.Day(req.ArrivalDate), calendar.Day(req.ExpectedDepartureDate)
	if expectedDeparture.Before(arrival) {
		v.Add("$.expectedDepartureDate", "beforeBookingArrivalDate")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Arrival != nil {
		return nil, apperror.Conflict("arrival", booking.Arrival.Id, "an arrival has already been recorded for this booking")
	}
	if booking.NonArrival != nil {
		return nil, apperror.Conflict("non-arrival", booking.NonArrival.Id, "a non-arrival has already been recorded for this booking")
	}
	if booking.IsCancelled() {
		return nil, apperror.GeneralValidation("this booking has been cancelled")
	}

	if arrival.Before(booking.ArrivalDate) || expectedDeparture.After(booking.DepartureDate) {
		if err := s.recheck(ctx, uow, booking, arrival, expectedDeparture, booking.TurnaroundWorkingDays()); err != nil {
			return nil, err
		}
	}

	now := s.config.now()
	booking.Arrival = &entity.Arrival{
		Id:                    uuid.New(),
		BookingId:             booking.Id,
		ArrivalDate:           arrival,
		ExpectedDepartureDate: expectedDeparture,
		KeyWorkerStaffCode:    req.KeyWorkerStaffCode,
		Notes:                 req.Notes,
		CreatedAt:             now,
	}
	booking.ArrivalDate = arrival
	booking.DepartureDate = expectedDeparture
	booking.Status = entity.BookingStatusArrived
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	if !s.config.ArrivedDepartedDisabled {
		person, err := s.recorder.person(ctx, booking.Crn)
		if err != nil {
			return nil, err
		}
		recordedBy, err := s.recorder.staffMember(ctx, actor.Id)
		if err != nil {
			return nil, err
		}
		if _, err := s.recorder.record(ctx, uow, events.PersonArrived{
			BookingId:           booking.Id,
			ApplicationId:       booking.ApplicationId,
			Person:              person,
			PremisesId:          booking.PremisesId,
			ArrivedAt:           dateOnly(arrival),
			ExpectedDepartureOn: dateOnly(expectedDeparture),
			KeyWorkerStaffCode:  req.KeyWorkerStaffCode,
			Notes:               req.Notes,
			RecordedBy:          recordedBy,
		}, now, bookingLinks(booking), actor); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Arrival recorded", map[string]interface{}{
		"booking_id":   booking.Id.String(),
		"arrival_date": dateOnly(arrival),
	})
	return booking, nil
}

func (s *bookingService) RecordNonArrival(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.NonArrivalRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.NonArrival != nil {
		return nil, apperror.Conflict("non-arrival", booking.NonArrival.Id, "a non-arrival has already been recorded for this booking")
	}
	if booking.Arrival != nil {
		return nil, apperror.Conflict("arrival", booking.Arrival.Id, "an arrival has already been recorded for this booking")
	}
	if booking.IsCancelled() {
		return nil, apperror.GeneralValidation("this booking has been cancelled")
	}

	date := calendar.Day(req.Date)
	if date.Before(calendar.Day(booking.OriginalArrivalDate)) {
		v.Add("$.date", "beforeBookingArrivalDate")
	}
	reason, err := s.referenceData(ctx, uow, req.ReasonId, entity.ReferenceNonArrivalReason, booking.Kind)
	if err != nil {
		return nil, err
	}
	if reason == nil {
		v.Add("$.reason", "doesNotExist")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.config.now()
	booking.NonArrival = &entity.NonArrival{
		Id:        uuid.New(),
		BookingId: booking.Id,
		Date:      date,
		ReasonId:  reason.Id,
		Notes:     req.Notes,
		CreatedAt: now,
	}
	booking.Status = entity.BookingStatusNotArrived
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	person, err := s.recorder.person(ctx, booking.Crn)
	if err != nil {
		return nil, err
	}
	recordedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	if _, err := s.recorder.record(ctx, uow, events.PersonNotArrived{
		BookingId:         booking.Id,
		ApplicationId:     booking.ApplicationId,
		Person:            person,
		ExpectedArrivalOn: dateOnly(booking.OriginalArrivalDate),
		ReasonId:          reason.Id,
		Reason:            reason.Name,
		Notes:             req.Notes,
		RecordedBy:        recordedBy,
	}, now, bookingLinks(booking), actor); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) RecordDeparture(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.DepartureRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Departure != nil {
		return nil, apperror.Conflict("departure", booking.Departure.Id, "a departure has already been recorded for this booking")
	}
	if booking.Arrival == nil {
		return nil, apperror.GeneralValidation("an arrival must be recorded before a departure")
	}

	if calendar.Day(req.DateTime).Before(calendar.Day(booking.Arrival.ArrivalDate)) {
		v.Add("$.dateTime", "beforeBookingArrivalDate")
	}

	reason, err := s.referenceData(ctx, uow, req.ReasonId, entity.ReferenceDepartureReason, booking.Kind)
	if err != nil {
		return nil, err
	}
	if reason == nil {
		v.Add("$.reasonId", "doesNotExist")
	}

	if req.MoveOnCategoryId != nil {
		category, err := s.referenceData(ctx, uow, *req.MoveOnCategoryId, entity.ReferenceMoveOnCategory, booking.Kind)
		if err != nil {
			return nil, err
		}
		if category == nil {
			v.Add("$.moveOnCategoryId", "doesNotExist")
		}
	}

	if booking.Kind == entity.ServiceKindApprovedPremises {
		if req.DestinationProviderId == nil {
			v.Add("$.destinationProviderId", "empty")
		} else {
			provider, err := s.referenceData(ctx, uow, *req.DestinationProviderId, entity.ReferenceDestinationProvider, booking.Kind)
			if err != nil {
				return nil, err
			}
			if provider == nil {
				v.Add("$.destinationProviderId", "doesNotExist")
			}
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.config.now()
	booking.Departure = &entity.Departure{
		Id:                    uuid.New(),
		BookingId:             booking.Id,
		DateTime:              req.DateTime.UTC(),
		ReasonId:              reason.Id,
		MoveOnCategoryId:      req.MoveOnCategoryId,
		DestinationProviderId: req.DestinationProviderId,
		Notes:                 req.Notes,
		CreatedAt:             now,
	}
	booking.DepartureDate = calendar.Day(req.DateTime)
	booking.Status = entity.BookingStatusDeparted
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	if !s.config.ArrivedDepartedDisabled {
		person, err := s.recorder.person(ctx, booking.Crn)
		if err != nil {
			return nil, err
		}
		recordedBy, err := s.recorder.staffMember(ctx, actor.Id)
		if err != nil {
			return nil, err
		}
		if _, err := s.recorder.record(ctx, uow, events.PersonDeparted{
			BookingId:             booking.Id,
			ApplicationId:         booking.ApplicationId,
			Person:                person,
			PremisesId:            booking.PremisesId,
			DepartedAt:            req.DateTime.UTC(),
			ReasonId:              reason.Id,
			Reason:                reason.Name,
			MoveOnCategoryId:      req.MoveOnCategoryId,
			DestinationProviderId: req.DestinationProviderId,
			RecordedBy:            recordedBy,
		}, now, bookingLinks(booking), actor); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Departure recorded", map[string]interface{}{
		"booking_id":     booking.Id.String(),
		"departure_date": dateOnly(booking.DepartureDate),
	})
	return booking, nil
}

// referenceData returns the active row with the given id when it is in category and applies
// to kind, nil otherwise.
func (s *bookingService) referenceData(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, category entity.ReferenceCategory, kind entity.ServiceKind) (*entity.ReferenceData, error) {
	row, err := uow.ReferenceDataRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil || !row.IsActive || row.Category != category || !row.AppliesTo(kind) {
		return nil, nil
	}
	return row, nil
}

func (s *bookingService) RecordExtension(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.ExtensionRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Status.IsTerminal() {
		return nil, apperror.GeneralValidation("this booking can no longer be extended")
	}
	newDeparture := calendar.Day(req.NewDepartureDate)
	if newDeparture.Before(booking.ArrivalDate) {
		v.Add("$.newDepartureDate", "beforeBookingArrivalDate")
		return nil, v.Err()
	}
	if err := s.recheck(ctx, uow, booking, booking.ArrivalDate, newDeparture, booking.TurnaroundWorkingDays()); err != nil {
		return nil, err
	}

	now := s.config.now()
	previousDeparture := booking.DepartureDate
	booking.Extensions = append(booking.Extensions, entity.Extension{
		Id:                    uuid.New(),
		BookingId:             booking.Id,
		PreviousDepartureDate: previousDeparture,
		NewDepartureDate:      newDeparture,
		Notes:                 req.Notes,
		CreatedAt:             now,
	})
	booking.DepartureDate = newDeparture
	if booking.Arrival != nil {
		booking.Arrival.ExpectedDepartureDate = newDeparture
	}
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.recordBookingChanged(ctx, uow, actor, booking, booking.ArrivalDate, previousDeparture, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) RecordDateChange(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.DateChangeRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if req.NewArrivalDate == nil && req.NewDepartureDate == nil {
		v.Add("$", "noDatesSpecified")
		return nil, v.Err()
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Status.IsTerminal() {
		return nil, apperror.GeneralValidation("the dates of this booking can no longer be changed")
	}

	arrival, departure := booking.ArrivalDate, booking.DepartureDate
	if req.NewArrivalDate != nil {
		if booking.Arrival != nil {
			v.Add("$.newArrivalDate", "arrivalDateCannotBeChangedOnArrivedBooking")
		}
		arrival = calendar.Day(*req.NewArrivalDate)
	}
	if req.NewDepartureDate != nil {
		departure = calendar.Day(*req.NewDepartureDate)
	}
	if departure.Before(arrival) {
		v.Add("$.newDepartureDate", "beforeBookingArrivalDate")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.recheck(ctx, uow, booking, arrival, departure, booking.TurnaroundWorkingDays()); err != nil {
		return nil, err
	}

	now := s.config.now()
	previousArrival, previousDeparture := booking.ArrivalDate, booking.DepartureDate
	booking.DateChanges = append(booking.DateChanges, entity.DateChange{
		Id:                    uuid.New(),
		BookingId:             booking.Id,
		PreviousArrivalDate:   previousArrival,
		PreviousDepartureDate: previousDeparture,
		NewArrivalDate:        arrival,
		NewDepartureDate:      departure,
		ChangedByUserId:       actor.Id,
		CreatedAt:             now,
	})
	booking.ArrivalDate = arrival
	booking.DepartureDate = departure
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.recordBookingChanged(ctx, uow, actor, booking, previousArrival, previousDeparture, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) recordBookingChanged(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	actor entity.Actor,
	booking *entity.Booking,
	previousArrival, previousDeparture time.Time,
	now time.Time,
) error {
	person, err := s.recorder.person(ctx, booking.Crn)
	if err != nil {
		return err
	}
	changedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return err
	}
	_, err = s.recorder.record(ctx, uow, events.BookingChanged{
		BookingId:           booking.Id,
		ApplicationId:       booking.ApplicationId,
		Person:              person,
		ArrivalOn:           dateOnly(booking.ArrivalDate),
		DepartureOn:         dateOnly(booking.DepartureDate),
		PreviousArrivalOn:   dateOnly(previousArrival),
		PreviousDepartureOn: dateOnly(previousDeparture),
		ChangedAt:           now,
		ChangedBy:           changedBy,
	}, now, bookingLinks(booking), actor)
	return err
}

func (s *bookingService) RecordTurnaround(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.TurnaroundRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.IsCancelled() {
		return nil, apperror.GeneralValidation("this booking has been cancelled")
	}
	if err := s.recheck(ctx, uow, booking, booking.ArrivalDate, booking.DepartureDate, req.WorkingDays); err != nil {
		return nil, err
	}

	booking.Turnarounds = append(booking.Turnarounds, entity.Turnaround{
		Id:              uuid.New(),
		BookingId:       booking.Id,
		WorkingDayCount: req.WorkingDays,
		CreatedAt:       s.config.now(),
	})
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Turnaround recorded", map[string]interface{}{
		"booking_id":   booking.Id.String(),
		"working_days": req.WorkingDays,
		"recorded_by":  actor.Id.String(),
	})
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.CancelBookingRequest) (*CancellationResult, error) {
	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	result, err := s.CancelInUnitOfWork(ctx, uow, booking, req, entity.WithdrawalContext{
		TriggeringUser:       actor,
		TriggeringEntityType: entity.WithdrawableBooking,
	})
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// cascadeReasons maps the level a withdrawal started at to the reserved reason recorded on
// every booking it cancels.
var cascadeReasons = map[entity.WithdrawableType]uuid.UUID{
	entity.WithdrawableApplication:          constant.CancellationReasonRelatedApplicationWithdrawn,
	entity.WithdrawablePlacementApplication: constant.CancellationReasonRelatedPlacementApplicationWithdrawn,
	entity.WithdrawablePlacementRequest:     constant.CancellationReasonRelatedPlacementRequestWithdrawn,
}

func (s *bookingService) CancelInUnitOfWork(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	booking *entity.Booking,
	req *dto.CancelBookingRequest,
	wctx entity.WithdrawalContext,
) (*CancellationResult, error) {
	if booking.Cancellation != nil {
		if booking.Kind == entity.ServiceKindTemporaryAccommodation {
			return nil, apperror.Conflict("cancellation", booking.Cancellation.Id, "this booking has already been cancelled")
		}
		applicationStatus, err := s.applicationStatus(ctx, uow, booking)
		if err != nil {
			return nil, err
		}
		return &CancellationResult{Booking: booking, Cancellation: booking.Cancellation, ApplicationStatus: applicationStatus}, nil
	}
	if booking.Status.IsTerminal() {
		return nil, apperror.GeneralValidation("this booking can no longer be cancelled")
	}

	reason, err := s.resolveCancellationReason(ctx, uow, booking, req, wctx)
	if err != nil {
		return nil, err
	}

	now := s.config.now()
	date := calendar.Day(now)
	if !req.Date.IsZero() {
		date = calendar.Day(req.Date)
	}
	cancellation := &entity.Cancellation{
		Id:          uuid.New(),
		BookingId:   booking.Id,
		Date:        date,
		ReasonId:    reason.Id,
		OtherReason: req.OtherReason,
		Notes:       req.Notes,
		CreatedAt:   now,
	}
	booking.Cancellation = cancellation
	booking.Status = entity.BookingStatusCancelled
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}

	result := &CancellationResult{Booking: booking, Cancellation: cancellation}

	if reason.Id == constant.CancellationReasonBookingAppealed && s.config.ReopenOnAppeal && booking.PlacementRequestId != nil {
		reopened, err := s.reopenPlacementRequest(ctx, uow, *booking.PlacementRequestId, now)
		if err != nil {
			return nil, err
		}
		result.ReopenedPlacementRequest = reopened
	}

	result.ApplicationStatus, err = s.applicationStatus(ctx, uow, booking)
	if err != nil {
		return nil, err
	}

	person, err := s.recorder.person(ctx, booking.Crn)
	if err != nil {
		return nil, err
	}
	cancelledBy, err := s.recorder.staffMember(ctx, wctx.TriggeringUser.Id)
	if err != nil {
		return nil, err
	}
	if _, err := s.recorder.record(ctx, uow, events.BookingCancelled{
		BookingId:            booking.Id,
		ApplicationId:        booking.ApplicationId,
		Person:               person,
		PremisesId:           booking.PremisesId,
		CancellationReasonId: reason.Id,
		CancellationReason:   reason.Name,
		CancelledAt:          dateOnly(date),
		CancellationRecorded: now,
		CancelledBy:          cancelledBy,
		TriggeringEntityType: string(wctx.TriggeringEntityType),
	}, now, bookingLinks(booking), wctx.TriggeringUser); err != nil {
		return nil, err
	}

	premises, err := uow.PremisesRepository().FindById(ctx, booking.PremisesId)
	if err != nil {
		return nil, err
	}
	if premises != nil {
		uow.AfterCommit(func(ctx context.Context) {
			s.notifier.send(s.config.BookingWithdrawnTemplateId, premises, booking, person)
		})
	}

	s.logger.Info(moduleBooking, "Booking cancelled", map[string]interface{}{
		"booking_id":         booking.Id.String(),
		"reason_id":          reason.Id.String(),
		"triggered_by":       string(wctx.TriggeringEntityType),
		"application_status": string(result.ApplicationStatus),
	})
	return result, nil
}

// resolveCancellationReason picks the reserved reason for a cascade, or validates the caller's.
func (s *bookingService) resolveCancellationReason(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	booking *entity.Booking,
	req *dto.CancelBookingRequest,
	wctx entity.WithdrawalContext,
) (*entity.ReferenceData, error) {
	if reserved, ok := cascadeReasons[wctx.TriggeringEntityType]; ok {
		reason, err := uow.ReferenceDataRepository().FindById(ctx, reserved)
		if err != nil {
			return nil, err
		}
		if reason == nil {
			return nil, apperror.Fatal(apperror.NotFound("cancellation reason", reserved), "reserved cancellation reasons are not seeded")
		}
		return reason, nil
	}

	v := apperror.NewValidationErrors()
	if req.ReasonId == nil {
		v.Add("$.reason", "empty")
		return nil, v.Err()
	}
	reason, err := s.referenceData(ctx, uow, *req.ReasonId, entity.ReferenceCancellationReason, booking.Kind)
	if err != nil {
		return nil, err
	}
	if reason == nil || constant.IsReservedCancellationReason(reason.Id) {
		v.Add("$.reason", "doesNotExist")
		return nil, v.Err()
	}
	if reason.Id == constant.CancellationReasonOther && req.OtherReason == "" {
		v.Add("$.otherReason", "empty")
		return nil, v.Err()
	}
	return reason, nil
}

// reopenPlacementRequest clones the placement request behind an appealed booking so the person
// goes back to awaiting placement with the same requirements.
func (s *bookingService) reopenPlacementRequest(ctx context.Context, uow unitofwork.UnitOfWork, placementRequestId uuid.UUID, now time.Time) (*entity.PlacementRequest, error) {
	original, err := uow.PlacementRequestRepository().FindByIdForUpdate(ctx, placementRequestId)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, apperror.NotFound("placement request", placementRequestId)
	}

	reopened := *original
	reopened.Id = uuid.New()
	reopened.CreatedAt = now
	reopened.BookingId = nil
	reopened.AllocatedToUserId = nil
	reopened.ReallocatedAt = nil
	if err := uow.PlacementRequestRepository().Create(ctx, &reopened); err != nil {
		return nil, err
	}

	// The original is superseded by the reopened request.
	original.ReallocatedAt = &now
	if err := uow.PlacementRequestRepository().Update(ctx, original); err != nil {
		return nil, err
	}
	return &reopened, nil
}

func (s *bookingService) applicationStatus(ctx context.Context, uow unitofwork.UnitOfWork, booking *entity.Booking) (status.Status, error) {
	if booking.ApplicationId == nil {
		return "", nil
	}
	return deriveApplicationStatus(ctx, uow, *booking.ApplicationId)
}

func (s *bookingService) MoveBed(ctx context.Context, actor entity.Actor, bookingId uuid.UUID, req *dto.BedMoveRequest) (*entity.Booking, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow, booking, err := s.lockBooking(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if booking.Status.IsTerminal() {
		return nil, apperror.GeneralValidation("this booking can no longer be moved")
	}

	newBed, _, err := s.lockBed(ctx, uow, req.NewBedId, &booking.PremisesId)
	if err != nil {
		return nil, err
	}
	if err := s.detector.Check(ctx, uow, conflict.Candidate{
		BedId:                 newBed.Id,
		Arrival:               booking.ArrivalDate,
		Departure:             booking.DepartureDate,
		TurnaroundWorkingDays: booking.TurnaroundWorkingDays(),
		ExcludeBookingId:      &booking.Id,
	}); err != nil {
		return nil, err
	}

	booking.BedMoves = append(booking.BedMoves, entity.BedMove{
		Id:              uuid.New(),
		BookingId:       booking.Id,
		PreviousBedId:   booking.BedId,
		NewBedId:        newBed.Id,
		Notes:           req.Notes,
		CreatedByUserId: actor.Id,
		CreatedAt:       s.config.now(),
	})
	bedId := newBed.Id
	booking.BedId = &bedId
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleBooking, "Bed moved", map[string]interface{}{
		"booking_id": booking.Id.String(),
		"new_bed_id": newBed.Id.String(),
	})
	return booking, nil
}
