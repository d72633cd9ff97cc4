package implementation

import (
	"context"
	"errors"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/mapper"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/scope"
	"placement-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type assessmentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApplicationMapper
}

func NewAssessmentRepository(db *gorm.DB) contract.AssessmentRepository {
	return &assessmentRepositoryImpl{db: db, mapper: mapper.NewApplicationMapper()}
}

func (r *assessmentRepositoryImpl) Create(ctx context.Context, assessment *entity.Assessment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(r.mapper.AssessmentToModel(assessment)).Error; err != nil {
		return err
	}
	for i := range assessment.ClarificationNotes {
		if err := r.SaveClarificationNote(ctx, &assessment.ClarificationNotes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *assessmentRepositoryImpl) Update(ctx context.Context, assessment *entity.Assessment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(r.mapper.AssessmentToModel(assessment)).Error
}

func (r *assessmentRepositoryImpl) SaveClarificationNote(ctx context.Context, note *entity.ClarificationNote) error {
	return r.db.WithContext(ctx).Save(r.mapper.NoteToModel(note)).Error
}

func (r *assessmentRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Assessment, error) {
	var row model.Assessment
	query := r.db.WithContext(ctx).Scopes(scope.PreloadClarificationNotes)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AssessmentToEntity(&row), nil
}

func (r *assessmentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Assessment, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *assessmentRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Assessment, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *assessmentRepositoryImpl) FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.Assessment, error) {
	var rows []*model.Assessment
	err := r.db.WithContext(ctx).
		Scopes(scope.PreloadClarificationNotes, scope.OrderByCreatedAsc).
		Where("application_id = ?", applicationId).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	assessments := make([]*entity.Assessment, 0, len(rows))
	for _, row := range rows {
		assessments = append(assessments, r.mapper.AssessmentToEntity(row))
	}
	return assessments, nil
}
