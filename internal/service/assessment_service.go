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

	"github.com/google/uuid"
)

const moduleAssessment = "ASSESSMENT"

type IAssessmentService interface {
	CreateAssessment(ctx context.Context, actor entity.Actor, applicationId uuid.UUID, allocatedTo *uuid.UUID) (*entity.Assessment, error)
	AddClarificationNote(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, query string) (*entity.ClarificationNote, error)
	AnswerClarificationNote(ctx context.Context, actor entity.Actor, assessmentId, noteId uuid.UUID, response string) error
	// Accept records the decision and, when dates are given, opens the initial placement request.
	Accept(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, req *dto.AcceptAssessmentRequest) (*entity.Assessment, *entity.PlacementRequest, error)
	Reject(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, rationale string) (*entity.Assessment, error)
	// Reallocate supersedes the assessment with a fresh one allocated to another user.
	Reallocate(ctx context.Context, actor entity.Actor, assessmentId, toUserId uuid.UUID) (*entity.Assessment, error)
}

type assessmentService struct {
	uowFactory unitofwork.RepositoryFactory
	recorder   *EventRecorder
	config     EngineConfig
	logger     logger.ILogger
}

func NewAssessmentService(
	uowFactory unitofwork.RepositoryFactory,
	recorder *EventRecorder,
	config EngineConfig,
	logger logger.ILogger,
) IAssessmentService {
	return &assessmentService{
		uowFactory: uowFactory,
		recorder:   recorder,
		config:     config,
		logger:     logger,
	}
}

func (s *assessmentService) CreateAssessment(ctx context.Context, actor entity.Actor, applicationId uuid.UUID, allocatedTo *uuid.UUID) (*entity.Assessment, error) {
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
	if !app.IsSubmitted() || app.IsWithdrawn {
		return nil, apperror.GeneralValidation("an assessment can only be created for a submitted application")
	}

	assessment := &entity.Assessment{
		Id:                uuid.New(),
		ApplicationId:     app.Id,
		AllocatedToUserId: allocatedTo,
		CreatedAt:         s.config.now(),
	}
	if err := uow.AssessmentRepository().Create(ctx, assessment); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return assessment, nil
}

// loadOpenAssessment locks an assessment that can still be worked on.
func loadOpenAssessment(ctx context.Context, uow unitofwork.UnitOfWork, assessmentId uuid.UUID) (*entity.Assessment, *entity.Application, error) {
	assessment, err := uow.AssessmentRepository().FindByIdForUpdate(ctx, assessmentId)
	if err != nil {
		return nil, nil, err
	}
	if assessment == nil {
		return nil, nil, apperror.NotFound("assessment", assessmentId)
	}
	if assessment.IsWithdrawn {
		return nil, nil, apperror.GeneralValidation("this assessment has been withdrawn")
	}
	if assessment.ReallocatedAt != nil {
		return nil, nil, apperror.GeneralValidation("this assessment has been reallocated")
	}

	app, err := uow.ApplicationRepository().FindById(ctx, assessment.ApplicationId)
	if err != nil {
		return nil, nil, err
	}
	if app == nil {
		return nil, nil, apperror.NotFound("application", assessment.ApplicationId)
	}
	return assessment, app, nil
}

func (s *assessmentService) AddClarificationNote(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, query string) (*entity.ClarificationNote, error) {
	if query == "" {
		v := apperror.NewValidationErrors()
		v.Add("$.query", "empty")
		return nil, v.Err()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	assessment, app, err := loadOpenAssessment(ctx, uow, assessmentId)
	if err != nil {
		return nil, err
	}
	if assessment.Decision != entity.AssessmentDecisionNone {
		return nil, apperror.Conflict("assessment", assessment.Id, "this assessment has already been completed")
	}

	now := s.config.now()
	note := &entity.ClarificationNote{
		Id:              uuid.New(),
		AssessmentId:    assessment.Id,
		CreatedByUserId: actor.Id,
		CreatedAt:       now,
		Query:           query,
	}
	if err := uow.AssessmentRepository().SaveClarificationNote(ctx, note); err != nil {
		return nil, err
	}

	person, err := s.recorder.person(ctx, app.Crn)
	if err != nil {
		return nil, err
	}
	requestedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return nil, err
	}
	_, err = s.recorder.record(ctx, uow, events.AssessmentInfoRequested{
		AssessmentId:  assessment.Id,
		ApplicationId: app.Id,
		NoteId:        note.Id,
		Person:        person,
		RequestedAt:   now,
		RequestedBy:   requestedBy,
	}, now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id, AssessmentId: &assessment.Id}, actor)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *assessmentService) AnswerClarificationNote(ctx context.Context, actor entity.Actor, assessmentId, noteId uuid.UUID, response string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	assessment, _, err := loadOpenAssessment(ctx, uow, assessmentId)
	if err != nil {
		return err
	}

	var note *entity.ClarificationNote
	for i := range assessment.ClarificationNotes {
		if assessment.ClarificationNotes[i].Id == noteId {
			note = &assessment.ClarificationNotes[i]
		}
	}
	if note == nil {
		return apperror.NotFound("clarification note", noteId)
	}
	if note.IsAnswered() {
		return apperror.Conflict("clarification note", noteId, "this note has already been answered")
	}

	now := s.config.now()
	note.Response = response
	note.ResponseReceivedOn = &now
	if err := uow.AssessmentRepository().SaveClarificationNote(ctx, note); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *assessmentService) Accept(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, req *dto.AcceptAssessmentRequest) (*entity.Assessment, *entity.PlacementRequest, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, nil, err
	}
	if req.ExpectedArrival != nil && req.Duration <= 0 {
		v.Add("$.duration", "isInvalid")
	}
	if err := v.Err(); err != nil {
		return nil, nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer uow.Rollback()

	assessment, app, err := loadOpenAssessment(ctx, uow, assessmentId)
	if err != nil {
		return nil, nil, err
	}
	if assessment.Decision != entity.AssessmentDecisionNone {
		return nil, nil, apperror.Conflict("assessment", assessment.Id, "this assessment has already been completed")
	}
	if assessment.HasUnansweredNote() {
		return nil, nil, apperror.GeneralValidation("this assessment is awaiting further information")
	}

	now := s.config.now()
	assessment.Decision = entity.AssessmentDecisionAccepted
	assessment.SubmittedAt = &now
	if err := uow.AssessmentRepository().Update(ctx, assessment); err != nil {
		return nil, nil, err
	}

	var placementRequest *entity.PlacementRequest
	if req.ExpectedArrival != nil && app.Kind == entity.ServiceKindApprovedPremises {
		placementRequest = &entity.PlacementRequest{
			Id:              uuid.New(),
			ApplicationId:   app.Id,
			AssessmentId:    assessment.Id,
			CreatedAt:       now,
			ExpectedArrival: *req.ExpectedArrival,
			Duration:        req.Duration,
			Requirements:    req.Requirements.ToEntity(),
			IsParole:        req.IsParole,
			Notes:           req.Notes,
		}
		if err := uow.PlacementRequestRepository().Create(ctx, placementRequest); err != nil {
			return nil, nil, err
		}
	}

	if err := s.recordAssessed(ctx, uow, actor, app, assessment, now); err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}

	details := map[string]interface{}{"assessment_id": assessment.Id.String()}
	if placementRequest != nil {
		details["placement_request_id"] = placementRequest.Id.String()
	}
	s.logger.Info(moduleAssessment, "Assessment accepted", details)
	return assessment, placementRequest, nil
}

func (s *assessmentService) Reject(ctx context.Context, actor entity.Actor, assessmentId uuid.UUID, rationale string) (*entity.Assessment, error) {
	if rationale == "" {
		v := apperror.NewValidationErrors()
		v.Add("$.rejectionRationale", "empty")
		return nil, v.Err()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	assessment, app, err := loadOpenAssessment(ctx, uow, assessmentId)
	if err != nil {
		return nil, err
	}
	if assessment.Decision != entity.AssessmentDecisionNone {
		return nil, apperror.Conflict("assessment", assessment.Id, "this assessment has already been completed")
	}

	now := s.config.now()
	assessment.Decision = entity.AssessmentDecisionRejected
	assessment.RejectionRationale = rationale
	assessment.SubmittedAt = &now
	if err := uow.AssessmentRepository().Update(ctx, assessment); err != nil {
		return nil, err
	}
	if err := s.recordAssessed(ctx, uow, actor, app, assessment, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleAssessment, "Assessment rejected", map[string]interface{}{"assessment_id": assessment.Id.String()})
	return assessment, nil
}

func (s *assessmentService) recordAssessed(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	actor entity.Actor,
	app *entity.Application,
	assessment *entity.Assessment,
	now time.Time,
) error {
	person, err := s.recorder.person(ctx, app.Crn)
	if err != nil {
		return err
	}
	assessedBy, err := s.recorder.staffMember(ctx, actor.Id)
	if err != nil {
		return err
	}
	_, err = s.recorder.record(ctx, uow, events.ApplicationAssessed{
		ApplicationId:     app.Id,
		AssessmentId:      assessment.Id,
		Person:            person,
		Decision:          string(assessment.Decision),
		DecisionRationale: assessment.RejectionRationale,
		AssessedAt:        now,
		AssessedBy:        assessedBy,
	}, now, eventLinks{Crn: app.Crn, ApplicationId: &app.Id, AssessmentId: &assessment.Id}, actor)
	return err
}

func (s *assessmentService) Reallocate(ctx context.Context, actor entity.Actor, assessmentId, toUserId uuid.UUID) (*entity.Assessment, error) {
	if !actor.HasRole(entity.UserRoleWorkflowManager) {
		return nil, apperror.Unauthorised("reallocation requires the workflow manager role")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	assessment, _, err := loadOpenAssessment(ctx, uow, assessmentId)
	if err != nil {
		return nil, err
	}
	if assessment.Decision != entity.AssessmentDecisionNone {
		return nil, apperror.GeneralValidation("a completed assessment cannot be reallocated")
	}

	now := s.config.now()
	assessment.ReallocatedAt = &now
	if err := uow.AssessmentRepository().Update(ctx, assessment); err != nil {
		return nil, err
	}

	replacement := &entity.Assessment{
		Id:                uuid.New(),
		ApplicationId:     assessment.ApplicationId,
		AllocatedToUserId: &toUserId,
		CreatedAt:         now,
	}
	if err := uow.AssessmentRepository().Create(ctx, replacement); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(moduleAssessment, "Assessment reallocated", map[string]interface{}{
		"assessment_id":   assessment.Id.String(),
		"replacement_id":  replacement.Id.String(),
		"allocated_to_id": toUserId.String(),
	})
	return replacement, nil
}
