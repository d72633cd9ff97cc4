package service

import (
	"context"

	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/status"

	"github.com/google/uuid"
)

const moduleApplication = "APPLICATION"

type IApplicationService interface {
	CreateApplication(ctx context.Context, actor entity.Actor, req *dto.CreateApplicationRequest) (*entity.Application, error)
	// SubmitApplication submits the application and opens its first assessment.
	SubmitApplication(ctx context.Context, actor entity.Actor, applicationId uuid.UUID) (*entity.Application, error)
	MarkInapplicable(ctx context.Context, actor entity.Actor, applicationId uuid.UUID) error
	GetStatus(ctx context.Context, applicationId uuid.UUID) (status.Status, error)
}

type applicationService struct {
	uowFactory unitofwork.RepositoryFactory
	recorder   *EventRecorder
	config     EngineConfig
	logger     logger.ILogger
}

func NewApplicationService(
	uowFactory unitofwork.RepositoryFactory,
	recorder *EventRecorder,
	config EngineConfig,
	logger logger.ILogger,
) IApplicationService {
	return &applicationService{
		uowFactory: uowFactory,
		recorder:   recorder,
		config:     config,
		logger:     logger,
	}
}

func (s *applicationService) CreateApplication(ctx context.Context, actor entity.Actor, req *dto.CreateApplicationRequest) (*entity.Application, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	app := &entity.Application{
		Id:              uuid.New(),
		Kind:            req.Kind,
		Crn:             req.Crn,
		CreatedByUserId: actor.Id,
		CreatedAt:       s.config.now(),
	}
	if req.Kind == entity.ServiceKindApprovedPremises {
		app.ApprovedPremises = &entity.ApprovedPremisesDetails{
			ApType:                 req.ApType,
			IsWomensApplication:    req.IsWomensApplication,
			IsEmergencyApplication: req.IsEmergencyApplication,
			ArrivalDate:            req.ArrivalDate,
		}
	} else {
		app.TemporaryAccommodation = &entity.TemporaryAccommodationDetails{
			ProbationRegion: req.ProbationRegion,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ApplicationRepository().Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) SubmitApplication(ctx context.Context, actor entity.Actor, applicationId uuid.UUID) (*entity.Application, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	app, err := uow.ApplicationRepository().FindByIdForUpdate(ctx, applicationId)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperror.NotFound("application", applicationId)
	}
	if app.IsWithdrawn {
		return nil, apperror.GeneralValidation("this application has been withdrawn")
	}
	if app.IsSubmitted() {
		return nil, apperror.GeneralValidation("this application has already been submitted")
	}

	now := s.config.now()
	app.SubmittedAt = &now
	if err := uow.ApplicationRepository().Update(ctx, app); err != nil {
		return nil, err
	}

	assessment := &entity.Assessment{
		Id:            uuid.New(),
		ApplicationId: app.Id,
		CreatedAt:     now,
	}
	if err := uow.AssessmentRepository().Create(ctx, assessment); err != nil {
		return nil, err
	}

	person, err := s.recorder.person(ctx, app.Crn)
	if err != nil {
		return nil, err
	}
	submittedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	_, err = s.recorder.record(ctx, uow, events.ApplicationSubmitted{
		ApplicationId: app.Id,
		ServiceKind:   string(app.Kind),
		Person:        person,
		SubmittedAt:   now,
		SubmittedBy:   submittedBy,
	}, now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id}, actor)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleApplication, "Application submitted", map[string]interface{}{
		"application_id": app.Id.String(),
		"assessment_id":  assessment.Id.String(),
	})
	return app, nil
}

func (s *applicationService) MarkInapplicable(ctx context.Context, actor entity.Actor, applicationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	app, err := uow.ApplicationRepository().FindByIdForUpdate(ctx, applicationId)
	if err != nil {
		return err
	}
	if app == nil {
		return apperror.NotFound("application", applicationId)
	}
	if app.Kind != entity.ServiceKindApprovedPremises {
		return apperror.GeneralValidation("only approved premises applications can be marked inapplicable")
	}
	if !actor.HasRole(entity.UserRoleAssessor) && !actor.HasRole(entity.UserRoleWorkflowManager) {
		return apperror.Unauthorised("marking an application inapplicable requires the assessor role")
	}

	app.IsInapplicable = true
	if err := uow.ApplicationRepository().Update(ctx, app); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *applicationService) GetStatus(ctx context.Context, applicationId uuid.UUID) (status.Status, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return deriveApplicationStatus(ctx, uow, applicationId)
}

// deriveApplicationStatus loads the slice of the arena the deriver reads. It takes no locks.
func deriveApplicationStatus(ctx context.Context, uow unitofwork.UnitOfWork, applicationId uuid.UUID) (status.Status, error) {
	app, err := uow.ApplicationRepository().FindById(ctx, applicationId)
	if err != nil {
		return "", err
	}
	if app == nil {
		return "", apperror.NotFound("application", applicationId)
	}

	assessments, err := uow.AssessmentRepository().FindByApplicationId(ctx, applicationId)
	if err != nil {
		return "", err
	}
	placementRequests, err := uow.PlacementRequestRepository().FindByApplicationId(ctx, applicationId)
	if err != nil {
		return "", err
	}
	bookings, err := uow.BookingRepository().FindByApplicationId(ctx, applicationId)
	if err != nil {
		return "", err
	}

	return status.DeriveApplicationStatus(status.Inputs{
		Application:       app,
		LatestAssessment:  status.LatestAssessment(assessments),
		PlacementRequests: placementRequests,
		Bookings:          bookings,
	}), nil
}
