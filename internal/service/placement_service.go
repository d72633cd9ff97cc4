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

const modulePlacement = "PLACEMENT"

type IPlacementService interface {
	SubmitPlacementApplication(ctx context.Context, actor entity.Actor, req *dto.SubmitPlacementApplicationRequest) (*entity.PlacementApplication, error)
	// DecidePlacementApplication sets the decision once. Acceptance opens one placement request per date.
	DecidePlacementApplication(ctx context.Context, actor entity.Actor, placementApplicationId uuid.UUID, req *dto.PlacementApplicationDecisionRequest) ([]*entity.PlacementRequest, error)
	ReallocatePlacementApplication(ctx context.Context, actor entity.Actor, placementApplicationId, toUserId uuid.UUID) (*entity.PlacementApplication, error)
	ReallocatePlacementRequest(ctx context.Context, actor entity.Actor, placementRequestId, toUserId uuid.UUID) (*entity.PlacementRequest, error)
}

type placementService struct {
	uowFactory unitofwork.RepositoryFactory
	recorder   *EventRecorder
	config     EngineConfig
	logger     logger.ILogger
}

func NewPlacementService(
	uowFactory unitofwork.RepositoryFactory,
	recorder *EventRecorder,
	config EngineConfig,
	logger logger.ILogger,
) IPlacementService {
	return &placementService{
		uowFactory: uowFactory,
		recorder:   recorder,
		config:     config,
		logger:     logger,
	}
}

func (s *placementService) SubmitPlacementApplication(ctx context.Context, actor entity.Actor, req *dto.SubmitPlacementApplicationRequest) (*entity.PlacementApplication, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	app, err := uow.ApplicationRepository().FindByIdForUpdate(ctx, req.ApplicationId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application", req.ApplicationId)
	}
	if app.Kind != entity.ServiceKindApprovedPremises {
		return nil, apperror.GeneralValidation("placement applications are only available for approved premises")
	}
	if app.IsWithdrawn {
		return nil, apperror.GeneralValidation("this application has been withdrawn")
	}

	assessments, err := uow.AssessmentRepository().FindByApplicationId(ctx, app.Id)
	if err != nil {
		return nil, err
	}
	latest := status.LatestAssessment(assessments)
	if latest == nil || latest.Decision != entity.AssessmentDecisionAccepted {
		return nil, apperror.GeneralValidation("the application has not been accepted")
	}

	now := s.config.now()
	pa := &entity.PlacementApplication{
		Id:              uuid.New(),
		ApplicationId:   app.Id,
		CreatedByUserId: actor.Id,
		CreatedAt:       now,
		SubmittedAt:     &now,
		PlacementType:   req.PlacementType,
	}
	for _, d := range req.Dates {
		pa.Dates = append(pa.Dates, entity.PlacementDate{
			Id:                     uuid.New(),
			PlacementApplicationId: pa.Id,
			ExpectedArrival:        d.ExpectedArrival,
			Duration:               d.Duration,
		})
	}
	if err := uow.PlacementApplicationRepository().Create(ctx, pa); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(modulePlacement, "Placement application submitted", map[string]interface{}{
		"placement_application_id": pa.Id.String(),
		"dates":                    len(pa.Dates),
	})
	return pa, nil
}

func (s *placementService) DecidePlacementApplication(ctx context.Context, actor entity.Actor, placementApplicationId uuid.UUID, req *dto.PlacementApplicationDecisionRequest) ([]*entity.PlacementRequest, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	pa, err := uow.PlacementApplicationRepository().FindByIdForUpdate(ctx, placementApplicationId)
	if err != nil {
		return nil, err
	}
	if pa == nil {
		return nil, apperror.NotFound("placement application", placementApplicationId)
	}
	if pa.HasDecision() {
		return nil, apperror.Conflict("placement application", pa.Id, "a decision has already been made")
	}
	if pa.ReallocatedAt != nil {
		return nil, apperror.GeneralValidation("this placement application has been reallocated")
	}

	app, err := uow.ApplicationRepository().FindById(ctx, pa.ApplicationId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application", pa.ApplicationId)
	}

	now := s.config.now()
	pa.Decision = req.Decision
	pa.DecisionMadeAt = &now
	if err := uow.PlacementApplicationRepository().Update(ctx, pa); err != nil {
		return nil, err
	}

	var created []*entity.PlacementRequest
	if req.Decision == entity.PlacementApplicationDecisionAccepted {
		created, err = s.createPlacementRequests(ctx, uow, actor, app, pa, now)
		if err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(modulePlacement, "Placement application decided", map[string]interface{}{
		"placement_application_id": pa.Id.String(),
		"decision":                 string(pa.Decision),
		"placement_requests":       len(created),
	})
	return created, nil
}

// createPlacementRequests opens one request per placement date, matching against the
// requirements captured when the latest assessment was accepted.
func (s *placementService) createPlacementRequests(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	actor entity.Actor,
	app *entity.Application,
	pa *entity.PlacementApplication,
	now time.Time,
) ([]*entity.PlacementRequest, error) {
	assessments, err := uow.AssessmentRepository().FindByApplicationId(ctx, app.Id)
	if err != nil {
		return nil, err
	}
	latest := status.LatestAssessment(assessments)
	if latest == nil {
		return nil, apperror.GeneralValidation("the application has no current assessment")
	}

	existing, err := uow.PlacementRequestRepository().FindByApplicationId(ctx, app.Id)
	if err != nil {
		return nil, err
	}
	var requirements entity.PlacementRequirements
	for _, pr := range existing {
		if pr.AssessmentId == latest.Id {
			requirements = pr.Requirements
			break
		}
	}

	person, err := s.recorder.person(ctx, app.Crn)
	if err != nil {
		return nil, err
	}

	created := make([]*entity.PlacementRequest, 0, len(pa.Dates))
	for _, d := range pa.Dates {
		paId := pa.Id
		pr := &entity.PlacementRequest{
			Id:                     uuid.New(),
			ApplicationId:          app.Id,
			AssessmentId:           latest.Id,
			PlacementApplicationId: &paId,
			CreatedAt:              now,
			ExpectedArrival:        d.ExpectedArrival,
			Duration:               d.Duration,
			Requirements:           requirements,
		}
		if err := uow.PlacementRequestRepository().Create(ctx, pr); err != nil {
			return nil, err
		}

		_, err = s.recorder.record(ctx, uow, events.RequestForPlacementCreated{
			ApplicationId:          app.Id,
			PlacementRequestId:     pr.Id,
			PlacementApplicationId: &paId,
			Person:                 person,
			ExpectedArrival:        dateOnly(pr.ExpectedArrival),
			Duration:               pr.Duration,
			CreatedAt:              now,
		}, now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id, PlacementRequestId: &pr.Id}, actor)
		if err != nil {
			return nil, err
		}
		created = append(created, pr)
	}
	return created, nil
}

func (s *placementService) ReallocatePlacementApplication(ctx context.Context, actor entity.Actor, placementApplicationId, toUserId uuid.UUID) (*entity.PlacementApplication, error) {
	if !actor.HasRole(entity.UserRoleWorkflowManager) {
		return nil, apperror.Unauthorised("reallocation requires the workflow manager role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	pa, err := uow.PlacementApplicationRepository().FindByIdForUpdate(ctx, placementApplicationId)
	if err != nil {
		return nil, err
	}
	if pa == nil {
		return nil, apperror.NotFound("placement application", placementApplicationId)
	}
	if pa.ReallocatedAt != nil {
		return nil, apperror.GeneralValidation("this placement application has already been reallocated")
	}
	if pa.HasDecision() {
		return nil, apperror.GeneralValidation("a decided placement application cannot be reallocated")
	}

	now := s.config.now()
	pa.ReallocatedAt = &now
	if err := uow.PlacementApplicationRepository().Update(ctx, pa); err != nil {
		return nil, err
	}

	clone := &entity.PlacementApplication{
		Id:                uuid.New(),
		ApplicationId:     pa.ApplicationId,
		CreatedByUserId:   pa.CreatedByUserId,
		CreatedAt:         pa.CreatedAt,
		SubmittedAt:       pa.SubmittedAt,
		AllocatedToUserId: &toUserId,
		AllocatedAt:       &now,
		PlacementType:     pa.PlacementType,
	}
	for _, d := range pa.Dates {
		clone.Dates = append(clone.Dates, entity.PlacementDate{
			Id:                     uuid.New(),
			PlacementApplicationId: clone.Id,
			ExpectedArrival:        d.ExpectedArrival,
			Duration:               d.Duration,
		})
	}
	if err := uow.PlacementApplicationRepository().Create(ctx, clone); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(modulePlacement, "Placement application reallocated", map[string]interface{}{
		"placement_application_id": pa.Id.String(),
		"replacement_id":           clone.Id.String(),
	})
	return clone, nil
}

func (s *placementService) ReallocatePlacementRequest(ctx context.Context, actor entity.Actor, placementRequestId, toUserId uuid.UUID) (*entity.PlacementRequest, error) {
	if !actor.HasRole(entity.UserRoleWorkflowManager) {
		return nil, apperror.Unauthorised("reallocation requires the workflow manager role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	pr, err := uow.PlacementRequestRepository().FindByIdForUpdate(ctx, placementRequestId)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, apperror.NotFound("placement request", placementRequestId)
	}
	if pr.ReallocatedAt != nil {
		return nil, apperror.GeneralValidation("this placement request has already been reallocated")
	}
	if pr.IsWithdrawn {
		return nil, apperror.GeneralValidation("this placement request has been withdrawn")
	}

	bookings, err := uow.BookingRepository().FindByPlacementRequestId(ctx, pr.Id)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if !b.IsCancelled() {
			return nil, apperror.Conflict("booking", b.Id, "placement request already has a booking")
		}
	}

	now := s.config.now()
	pr.ReallocatedAt = &now
	if err := uow.PlacementRequestRepository().Update(ctx, pr); err != nil {
		return nil, err
	}

	clone := *pr
	clone.Id = uuid.New()
	clone.AllocatedToUserId = &toUserId
	clone.ReallocatedAt = nil
	clone.BookingId = nil
	clone.CreatedAt = now
	if err := uow.PlacementRequestRepository().Create(ctx, &clone); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(modulePlacement, "Placement request reallocated", map[string]interface{}{
		"placement_request_id": pr.Id.String(),
		"replacement_id":       clone.Id.String(),
	})
	return &clone, nil
}
