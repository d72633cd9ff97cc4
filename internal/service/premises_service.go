package service

import (
	"context"
	"time"

	"placement-engine-be/internal/constant"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/pkg/placement/conflict"

	"github.com/google/uuid"
)

const modulePremises = "PREMISES"

type CreateLostBedRequest struct {
	BedId     uuid.UUID `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
	ReasonId  uuid.UUID `validate:"required"`
	Notes     string
}

type IPremisesService interface {
	CreatePremises(ctx context.Context, premises *entity.Premises) error
	CreateBed(ctx context.Context, bed *entity.Bed) error
	// CreateLostBed takes a bed out of service. It may not overlap a live booking or lost bed.
	CreateLostBed(ctx context.Context, req *CreateLostBedRequest) (*entity.LostBed, error)
	CancelLostBed(ctx context.Context, lostBedId uuid.UUID) (*entity.LostBed, error)
	// SeedReferenceData inserts any default reference rows that are missing.
	SeedReferenceData(ctx context.Context) (int, error)
}

type premisesService struct {
	uowFactory unitofwork.RepositoryFactory
	detector   *conflict.Detector
	config     EngineConfig
	logger     logger.ILogger
}

func NewPremisesService(
	uowFactory unitofwork.RepositoryFactory,
	detector *conflict.Detector,
	config EngineConfig,
	logger logger.ILogger,
) IPremisesService {
	return &premisesService{
		uowFactory: uowFactory,
		detector:   detector,
		config:     config,
		logger:     logger,
	}
}

func (s *premisesService) CreatePremises(ctx context.Context, premises *entity.Premises) error {
	v := apperror.NewValidationErrors()
	if !premises.Kind.Valid() {
		v.Add("$.serviceKind", "isInvalid")
	}
	if premises.Name == "" {
		v.Add("$.name", "empty")
	}
	if premises.TurnaroundWorkingDays < 0 {
		v.Add("$.turnaroundWorkingDays", "isInvalid")
	}
	if err := v.Err(); err != nil {
		return err
	}
	if premises.Id == uuid.Nil {
		premises.Id = uuid.New()
	}
	return s.uowFactory.NewUnitOfWork(ctx).PremisesRepository().Create(ctx, premises)
}

func (s *premisesService) CreateBed(ctx context.Context, bed *entity.Bed) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	premises, err := uow.PremisesRepository().FindById(ctx, bed.PremisesId)
	if err != nil {
		return err
	}
	if premises == nil {
		return apperror.NotFound("premises", bed.PremisesId)
	}
	if bed.Id == uuid.Nil {
		bed.Id = uuid.New()
	}
	return uow.BedRepository().Create(ctx, bed)
}

func (s *premisesService) CreateLostBed(ctx context.Context, req *CreateLostBedRequest) (*entity.LostBed, error) {
	v := apperror.NewValidationErrors()
	if err := v.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.EndDate.Before(req.StartDate) {
		v.Add("$.endDate", "beforeStartDate")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	bed, err := uow.BedRepository().FindByIdForUpdate(ctx, req.BedId)
	if err != nil {
		return nil, err
	}
	if bed == nil {
		return nil, apperror.NotFound("bed", req.BedId)
	}

	reason, err := uow.ReferenceDataRepository().FindById(ctx, req.ReasonId)
	if err != nil {
		return nil, err
	}
	if reason == nil || reason.Category != entity.ReferenceLostBedReason {
		v.Add("$.reason", "doesNotExist")
		return nil, v.Err()
	}

	lostBed := &entity.LostBed{
		Id:         uuid.New(),
		PremisesId: bed.PremisesId,
		BedId:      bed.Id,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		ReasonId:   req.ReasonId,
		Notes:      req.Notes,
		CreatedAt:  s.config.now(),
	}
	if err := s.checkLostBedIsFree(ctx, uow, lostBed); err != nil {
		return nil, err
	}

	if err := uow.LostBedRepository().Create(ctx, lostBed); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(modulePremises, "Lost bed recorded", map[string]interface{}{
		"lost_bed_id": lostBed.Id.String(),
		"bed_id":      bed.Id.String(),
		"start_date":  dateOnly(lostBed.StartDate),
		"end_date":    dateOnly(lostBed.EndDate),
	})
	return lostBed, nil
}

func (s *premisesService) checkLostBedIsFree(ctx context.Context, uow unitofwork.UnitOfWork, lostBed *entity.LostBed) error {
	window := conflict.LostBedWindow(lostBed)

	booking, err := s.detector.FindConflictingBooking(ctx, uow, lostBed.BedId, window.Start, window.End, nil)
	if err != nil {
		return err
	}
	if booking != nil {
		w := s.detector.BookingWindow(booking)
		return &apperror.ConflictError{
			ConflictingId: booking.Id,
			Entity:        "booking",
			Window:        &w,
			Message:       "a booking already exists for these dates",
		}
	}

	other, err := s.detector.FindConflictingLostBed(ctx, uow, lostBed.BedId, lostBed.StartDate, lostBed.EndDate, &lostBed.Id)
	if err != nil {
		return err
	}
	if other != nil {
		w := conflict.LostBedWindow(other)
		return &apperror.ConflictError{
			ConflictingId: other.Id,
			Entity:        "lost bed",
			Window:        &w,
			Message:       "a lost bed already exists for these dates",
		}
	}
	return nil
}

func (s *premisesService) CancelLostBed(ctx context.Context, lostBedId uuid.UUID) (*entity.LostBed, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	lostBed, err := uow.LostBedRepository().FindByIdForUpdate(ctx, lostBedId)
	if err != nil {
		return nil, err
	}
	if lostBed == nil {
		return nil, apperror.NotFound("lost bed", lostBedId)
	}
	if lostBed.IsCancelled {
		return lostBed, nil
	}

	lostBed.IsCancelled = true
	if err := uow.LostBedRepository().Update(ctx, lostBed); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return lostBed, nil
}

func (s *premisesService) SeedReferenceData(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	inserted := 0
	for _, row := range DefaultReferenceData() {
		existing, err := uow.ReferenceDataRepository().FindById(ctx, row.Id)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			continue
		}
		if err := uow.ReferenceDataRepository().Create(ctx, row); err != nil {
			return 0, err
		}
		inserted++
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info(modulePremises, "Reference data seeded", map[string]interface{}{"inserted": inserted})
	return inserted, nil
}

// DefaultReferenceData lists the reasons the engine relies on, including the reserved
// cascade cancellation reasons.
func DefaultReferenceData() []*entity.ReferenceData {
	row := func(id uuid.UUID, category entity.ReferenceCategory, name string, scope entity.ServiceKind) *entity.ReferenceData {
		return &entity.ReferenceData{Id: id, Category: category, Name: name, ServiceScope: scope, IsActive: true}
	}
	return []*entity.ReferenceData{
		row(constant.CancellationReasonRelatedApplicationWithdrawn, entity.ReferenceCancellationReason, "Related application withdrawn", ""),
		row(constant.CancellationReasonRelatedPlacementApplicationWithdrawn, entity.ReferenceCancellationReason, "Related request for placement withdrawn", entity.ServiceKindApprovedPremises),
		row(constant.CancellationReasonRelatedPlacementRequestWithdrawn, entity.ReferenceCancellationReason, "Related placement request withdrawn", entity.ServiceKindApprovedPremises),
		row(constant.CancellationReasonBookingAppealed, entity.ReferenceCancellationReason, "Booking successfully appealed", entity.ServiceKindApprovedPremises),
		row(constant.CancellationReasonPersonNoLongerRequires, entity.ReferenceCancellationReason, "Person no longer requires accommodation", ""),
		row(constant.CancellationReasonOther, entity.ReferenceCancellationReason, "Other", ""),
		row(constant.DepartureReasonPlannedMoveOn, entity.ReferenceDepartureReason, "Planned move-on", ""),
		row(constant.DepartureReasonBreachOrRecall, entity.ReferenceDepartureReason, "Breach or recall", ""),
		row(constant.MoveOnCategoryNotApplicable, entity.ReferenceMoveOnCategory, "Not applicable", ""),
		row(constant.DestinationProviderProbation, entity.ReferenceDestinationProvider, "Probation", entity.ServiceKindApprovedPremises),
		row(constant.NonArrivalReasonRecalled, entity.ReferenceNonArrivalReason, "Recalled", ""),
		row(constant.LostBedReasonMaintenance, entity.ReferenceLostBedReason, "Maintenance", ""),
	}
}
