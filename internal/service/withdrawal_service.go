package service

import (
	"context"
	"time"

	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/status"

	"github.com/google/uuid"
)

const moduleWithdrawal = "WITHDRAWAL"

// WithdrawRequest describes a withdrawal. Context.TriggeringEntityType is overwritten with the
// type being withdrawn; only the triggering user is read from it.
type WithdrawRequest struct {
	Context     entity.WithdrawalContext
	Reason      entity.WithdrawalReason
	OtherReason string
	// CancellationReasonId is only read for booking withdrawals.
	CancellationReasonId *uuid.UUID
	Notes                string
}

type WithdrawalResult struct {
	EntityType       entity.WithdrawableType
	EntityId         uuid.UUID
	AlreadyWithdrawn bool

	WithdrawnAssessmentIds           []uuid.UUID
	WithdrawnPlacementApplicationIds []uuid.UUID
	WithdrawnPlacementRequestIds     []uuid.UUID
	CancelledBookingIds              []uuid.UUID

	ApplicationStatus status.Status
}

type IWithdrawalService interface {
	// Withdraw withdraws the entity and everything that depends on it in one transaction.
	// Withdrawing something already withdrawn is a no-op.
	Withdraw(ctx context.Context, entityType entity.WithdrawableType, entityId uuid.UUID, req *WithdrawRequest) (*WithdrawalResult, error)
}

type withdrawalService struct {
	uowFactory unitofwork.RepositoryFactory
	bookings   IBookingService
	recorder   *EventRecorder
	config     EngineConfig
	logger     logger.ILogger
}

func NewWithdrawalService(
	uowFactory unitofwork.RepositoryFactory,
	bookings IBookingService,
	recorder *EventRecorder,
	config EngineConfig,
	logger logger.ILogger,
) IWithdrawalService {
	return &withdrawalService{
		uowFactory: uowFactory,
		bookings:   bookings,
		recorder:   recorder,
		config:     config,
		logger:     logger,
	}
}

// cascade is the state of one withdrawal request as it walks down the chain.
type cascade struct {
	uow    unitofwork.UnitOfWork
	wctx   entity.WithdrawalContext
	req    *WithdrawRequest
	result *WithdrawalResult
	now    time.Time

	person      *events.Person
	withdrawnBy *events.StaffMember
}

func (s *withdrawalService) Withdraw(ctx context.Context, entityType entity.WithdrawableType, entityId uuid.UUID, req *WithdrawRequest) (*WithdrawalResult, error) {
	if err := validateWithdrawRequest(entityType, req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	c := &cascade{
		uow: uow,
		wctx: entity.WithdrawalContext{
			TriggeringUser:       req.Context.TriggeringUser,
			TriggeringEntityType: entityType,
		},
		req:    req,
		result: &WithdrawalResult{EntityType: entityType, EntityId: entityId},
		now:    s.config.now(),
	}

	applicationId, err := s.withdrawRoot(ctx, c, entityType, entityId)
	if err != nil {
		return nil, err
	}

	if applicationId != nil {
		c.result.ApplicationStatus, err = deriveApplicationStatus(ctx, uow, *applicationId)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleWithdrawal, "Withdrawal completed", map[string]interface{}{
		"entity_type":                  string(entityType),
		"entity_id":                    entityId.String(),
		"already_withdrawn":            c.result.AlreadyWithdrawn,
		"withdrawn_assessments":        len(c.result.WithdrawnAssessmentIds),
		"withdrawn_placement_apps":     len(c.result.WithdrawnPlacementApplicationIds),
		"withdrawn_placement_requests": len(c.result.WithdrawnPlacementRequestIds),
		"cancelled_bookings":           len(c.result.CancelledBookingIds),
		"application_status":           string(c.result.ApplicationStatus),
		"triggered_by":                 c.wctx.TriggeringUser.Id.String(),
	})
	return c.result, nil
}

func validateWithdrawRequest(entityType entity.WithdrawableType, req *WithdrawRequest) error {
	v := apperror.NewValidationErrors()
	switch entityType {
	case entity.WithdrawableBooking:
		if req.CancellationReasonId == nil {
			v.Add("$.reason", "empty")
		}
	case entity.WithdrawableApplication, entity.WithdrawablePlacementApplication, entity.WithdrawablePlacementRequest:
		if !req.Reason.IsUserSelectable() {
			v.Add("$.reason", "isInvalid")
		}
		if req.Reason == entity.WithdrawalReasonOther && req.OtherReason == "" {
			v.Add("$.otherReason", "empty")
		}
	default:
		v.Add("$.entityType", "isInvalid")
	}
	return v.Err()
}

// withdrawRoot locks the entity the request names, checks the caller may withdraw it and starts
// the cascade. It returns the owning application, if any.
func (s *withdrawalService) withdrawRoot(ctx context.Context, c *cascade, entityType entity.WithdrawableType, entityId uuid.UUID) (*uuid.UUID, error) {
	switch entityType {
	case entity.WithdrawableApplication:
		app, err := c.uow.ApplicationRepository().FindByIdForUpdate(ctx, entityId)
		if err != nil {
			return nil, err
		}
		if app == nil {
			return nil, apperror.NotFound("application", entityId)
		}
		if err := authoriseWithdrawal(c.wctx.TriggeringUser, app); err != nil {
			return nil, err
		}
		if app.IsWithdrawn {
			c.result.AlreadyWithdrawn = true
			return &app.Id, nil
		}
		return &app.Id, s.withdrawApplication(ctx, c, app)

	case entity.WithdrawablePlacementApplication:
		pa, err := c.uow.PlacementApplicationRepository().FindByIdForUpdate(ctx, entityId)
		if err != nil {
			return nil, err
		}
		if pa == nil {
			return nil, apperror.NotFound("placement application", entityId)
		}
		app, err := s.owningApplication(ctx, c, pa.ApplicationId)
		if err != nil {
			return nil, err
		}
		if pa.Decision.IsWithdrawn() {
			c.result.AlreadyWithdrawn = true
			return &app.Id, nil
		}
		return &app.Id, s.withdrawPlacementApplication(ctx, c, app, pa, c.req.Reason, false)

	case entity.WithdrawablePlacementRequest:
		pr, err := c.uow.PlacementRequestRepository().FindByIdForUpdate(ctx, entityId)
		if err != nil {
			return nil, err
		}
		if pr == nil {
			return nil, apperror.NotFound("placement request", entityId)
		}
		app, err := s.owningApplication(ctx, c, pr.ApplicationId)
		if err != nil {
			return nil, err
		}
		if pr.IsWithdrawn {
			c.result.AlreadyWithdrawn = true
			return &app.Id, nil
		}
		return &app.Id, s.withdrawPlacementRequest(ctx, c, app, pr, c.req.Reason)

	case entity.WithdrawableBooking:
		booking, err := c.uow.BookingRepository().FindByIdForUpdate(ctx, entityId)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, apperror.NotFound("booking", entityId)
		}
		var app *entity.Application
		if booking.ApplicationId != nil {
			if app, err = c.uow.ApplicationRepository().FindById(ctx, *booking.ApplicationId); err != nil {
				return nil, err
			}
		}
		if err := authoriseWithdrawal(c.wctx.TriggeringUser, app); err != nil {
			return nil, err
		}
		if booking.IsCancelled() {
			c.result.AlreadyWithdrawn = true
			return booking.ApplicationId, nil
		}
		_, err = s.bookings.CancelInUnitOfWork(ctx, c.uow, booking, &dto.CancelBookingRequest{
			ReasonId:    c.req.CancellationReasonId,
			OtherReason: c.req.OtherReason,
			Notes:       c.req.Notes,
		}, c.wctx)
		if err != nil {
			return nil, err
		}
		c.result.CancelledBookingIds = append(c.result.CancelledBookingIds, booking.Id)
		return booking.ApplicationId, nil
	}
	return nil, apperror.GeneralValidation("unknown withdrawable type " + string(entityType))
}

func (s *withdrawalService) owningApplication(ctx context.Context, c *cascade, applicationId uuid.UUID) (*entity.Application, error) {
	app, err := c.uow.ApplicationRepository().FindById(ctx, applicationId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application", applicationId)
	}
	if err := authoriseWithdrawal(c.wctx.TriggeringUser, app); err != nil {
		return nil, err
	}
	return app, nil
}

// authoriseWithdrawal allows the application's creator and workflow managers. Bookings without
// an online application may also be withdrawn by premises managers.
func authoriseWithdrawal(actor entity.Actor, app *entity.Application) error {
	if actor.HasRole(entity.UserRoleWorkflowManager) {
		return nil
	}
	if app != nil && app.CreatedByUserId == actor.Id {
		return nil
	}
	if app == nil && actor.HasRole(entity.UserRoleManager) {
		return nil
	}
	return apperror.Unauthorised("you are not permitted to withdraw this")
}

func (s *withdrawalService) withdrawApplication(ctx context.Context, c *cascade, app *entity.Application) error {
	app.IsWithdrawn = true
	app.WithdrawalReason = c.req.Reason
	app.OtherWithdrawalReason = c.req.OtherReason
	if err := c.uow.ApplicationRepository().Update(ctx, app); err != nil {
		return err
	}

	assessments, err := c.uow.AssessmentRepository().FindByApplicationId(ctx, app.Id)
	if err != nil {
		return err
	}
	for _, a := range assessments {
		if a.IsWithdrawn {
			continue
		}
		a.IsWithdrawn = true
		if err := c.uow.AssessmentRepository().Update(ctx, a); err != nil {
			return err
		}
		c.result.WithdrawnAssessmentIds = append(c.result.WithdrawnAssessmentIds, a.Id)
	}

	if app.Kind == entity.ServiceKindApprovedPremises {
		placementApplications, err := c.uow.PlacementApplicationRepository().FindByApplicationId(ctx, app.Id)
		if err != nil {
			return err
		}
		for _, listed := range placementApplications {
			pa, err := c.uow.PlacementApplicationRepository().FindByIdForUpdate(ctx, listed.Id)
			if err != nil {
				return err
			}
			if pa == nil || pa.Decision.IsWithdrawn() {
				continue
			}
			if err := s.withdrawPlacementApplication(ctx, c, app, pa, entity.WithdrawalReasonRelatedApplicationWithdrawn, true); err != nil {
				return err
			}
		}

		placementRequests, err := c.uow.PlacementRequestRepository().FindByApplicationId(ctx, app.Id)
		if err != nil {
			return err
		}
		for _, listed := range placementRequests {
			pr, err := c.uow.PlacementRequestRepository().FindByIdForUpdate(ctx, listed.Id)
			if err != nil {
				return err
			}
			if pr == nil || pr.IsWithdrawn {
				continue
			}
			if err := s.withdrawPlacementRequest(ctx, c, app, pr, entity.WithdrawalReasonRelatedApplicationWithdrawn); err != nil {
				return err
			}
		}
	}

	// Bookings not reached through a placement request, e.g. ad-hoc bookings linked to the application.
	bookings, err := c.uow.BookingRepository().FindByApplicationId(ctx, app.Id)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if err := s.cancelBooking(ctx, c, b.Id); err != nil {
			return err
		}
	}

	person, withdrawnBy, err := s.actors(ctx, c, app.Crn)
	if err != nil {
		return err
	}
	_, err = s.recorder.record(ctx, c.uow, events.ApplicationWithdrawn{
		ApplicationId:         app.Id,
		Person:                person,
		WithdrawalReason:      string(app.WithdrawalReason),
		OtherWithdrawalReason: app.OtherWithdrawalReason,
		WithdrawnAt:           c.now,
		WithdrawnBy:           withdrawnBy,
	}, c.now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id}, c.wctx.TriggeringUser)
	return err
}

// withdrawPlacementApplication withdraws pa and, when it was already decided, the placement
// requests it spawned. A direct withdrawal is recorded as withdrawn by the requester.
func (s *withdrawalService) withdrawPlacementApplication(
	ctx context.Context,
	c *cascade,
	app *entity.Application,
	pa *entity.PlacementApplication,
	reason entity.WithdrawalReason,
	cascaded bool,
) error {
	wasDecided := pa.HasDecision()

	if cascaded {
		pa.Decision = entity.PlacementApplicationDecisionWithdrawn
	} else {
		pa.Decision = entity.PlacementApplicationDecisionWithdrawnByRequester
	}
	pa.WithdrawalReason = reason
	if pa.DecisionMadeAt == nil {
		now := c.now
		pa.DecisionMadeAt = &now
	}
	if err := c.uow.PlacementApplicationRepository().Update(ctx, pa); err != nil {
		return err
	}
	c.result.WithdrawnPlacementApplicationIds = append(c.result.WithdrawnPlacementApplicationIds, pa.Id)

	if wasDecided {
		spawned, err := c.uow.PlacementRequestRepository().FindByPlacementApplicationId(ctx, pa.Id)
		if err != nil {
			return err
		}
		for _, listed := range spawned {
			pr, err := c.uow.PlacementRequestRepository().FindByIdForUpdate(ctx, listed.Id)
			if err != nil {
				return err
			}
			if pr == nil || pr.IsWithdrawn {
				continue
			}
			if err := s.withdrawPlacementRequest(ctx, c, app, pr, entity.WithdrawalReasonRelatedPlacementAppWithdrawn); err != nil {
				return err
			}
		}
	}

	dates := make([]events.DatePeriod, 0, len(pa.Dates))
	for _, d := range pa.Dates {
		dates = append(dates, events.DatePeriod{
			StartDate: dateOnly(d.ExpectedArrival),
			EndDate:   dateOnly(d.ExpectedArrival.AddDate(0, 0, d.Duration)),
		})
	}

	person, withdrawnBy, err := s.actors(ctx, c, app.Crn)
	if err != nil {
		return err
	}
	_, err = s.recorder.record(ctx, c.uow, events.PlacementApplicationWithdrawn{
		PlacementApplicationId: pa.Id,
		ApplicationId:          app.Id,
		Person:                 person,
		Decision:               string(pa.Decision),
		WithdrawalReason:       string(reason),
		PlacementDates:         dates,
		WithdrawnAt:            c.now,
		WithdrawnBy:            withdrawnBy,
	}, c.now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id}, c.wctx.TriggeringUser)
	return err
}

// withdrawPlacementRequest withdraws pr and cancels its bookings. The parent application and
// assessment are left alone.
func (s *withdrawalService) withdrawPlacementRequest(
	ctx context.Context,
	c *cascade,
	app *entity.Application,
	pr *entity.PlacementRequest,
	reason entity.WithdrawalReason,
) error {
	pr.IsWithdrawn = true
	pr.WithdrawalReason = reason
	if err := c.uow.PlacementRequestRepository().Update(ctx, pr); err != nil {
		return err
	}
	c.result.WithdrawnPlacementRequestIds = append(c.result.WithdrawnPlacementRequestIds, pr.Id)

	bookings, err := c.uow.BookingRepository().FindByPlacementRequestId(ctx, pr.Id)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if err := s.cancelBooking(ctx, c, b.Id); err != nil {
			return err
		}
	}

	person, withdrawnBy, err := s.actors(ctx, c, app.Crn)
	if err != nil {
		return err
	}
	prId := pr.Id
	_, err = s.recorder.record(ctx, c.uow, events.MatchRequestWithdrawn{
		PlacementRequestId: pr.Id,
		ApplicationId:      app.Id,
		Person:             person,
		WithdrawalReason:   string(reason),
		RequestedDates: events.DatePeriod{
			StartDate: dateOnly(pr.ExpectedArrival),
			EndDate:   dateOnly(pr.ExpectedDeparture()),
		},
		WithdrawnAt: c.now,
		WithdrawnBy: withdrawnBy,
	}, c.now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id, PlacementRequestId: &prId}, c.wctx.TriggeringUser)
	return err
}

// cancelBooking reloads the booking under lock so a booking reached twice in one cascade is
// cancelled once. Cancelled and finished bookings are skipped.
func (s *withdrawalService) cancelBooking(ctx context.Context, c *cascade, bookingId uuid.UUID) error {
	booking, err := c.uow.BookingRepository().FindByIdForUpdate(ctx, bookingId)
	if err != nil {
		return err
	}
	if booking == nil || booking.IsCancelled() || booking.Status.IsTerminal() {
		return nil
	}
	if _, err := s.bookings.CancelInUnitOfWork(ctx, c.uow, booking, &dto.CancelBookingRequest{Notes: c.req.Notes}, c.wctx); err != nil {
		return err
	}
	c.result.CancelledBookingIds = append(c.result.CancelledBookingIds, booking.Id)
	return nil
}

// actors resolves the person and the withdrawing staff member once per request.
func (s *withdrawalService) actors(ctx context.Context, c *cascade, crn string) (events.Person, events.StaffMember, error) {
	if c.person == nil {
		person, err := s.recorder.person(ctx, crn)
		if err != nil {
			return events.Person{}, events.StaffMember{}, err
		}
		c.person = &person
	}
	if c.withdrawnBy == nil {
		staff, err := s.recorder.staffMember(ctx, c.wctx.TriggeringUser.Id)
		if err != nil {
			return events.Person{}, events.StaffMember{}, err
		}
		c.withdrawnBy = &staff
	}
	return *c.person, *c.withdrawnBy, nil
}
