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

type placementApplicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlacementMapper
}

func NewPlacementApplicationRepository(db *gorm.DB) contract.PlacementApplicationRepository {
	return &placementApplicationRepositoryImpl{db: db, mapper: mapper.NewPlacementMapper()}
}

func (r *placementApplicationRepositoryImpl) Create(ctx context.Context, pa *entity.PlacementApplication) error {
	return r.db.WithContext(ctx).Create(r.mapper.ApplicationToModel(pa)).Error
}

// Update saves the row; dates are fixed at creation.
func (r *placementApplicationRepositoryImpl) Update(ctx context.Context, pa *entity.PlacementApplication) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(r.mapper.ApplicationToModel(pa)).Error
}

func (r *placementApplicationRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.PlacementApplication, error) {
	var row model.PlacementApplication
	query := r.db.WithContext(ctx).Scopes(scope.PreloadPlacementDates)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ApplicationToEntity(&row), nil
}

func (r *placementApplicationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.PlacementApplication, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *placementApplicationRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementApplication, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *placementApplicationRepositoryImpl) FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.PlacementApplication, error) {
	var rows []*model.PlacementApplication
	err := r.db.WithContext(ctx).
		Scopes(scope.PreloadPlacementDates, scope.OrderByCreatedAsc).
		Where("application_id = ?", applicationId).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	var result []*entity.PlacementApplication
	for _, row := range rows {
		result = append(result, r.mapper.ApplicationToEntity(row))
	}
	return result, nil
}

type placementRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlacementMapper
}

func NewPlacementRequestRepository(db *gorm.DB) contract.PlacementRequestRepository {
	return &placementRequestRepositoryImpl{db: db, mapper: mapper.NewPlacementMapper()}
}

func (r *placementRequestRepositoryImpl) Create(ctx context.Context, pr *entity.PlacementRequest) error {
	return r.db.WithContext(ctx).Create(r.mapper.RequestToModel(pr)).Error
}

func (r *placementRequestRepositoryImpl) Update(ctx context.Context, pr *entity.PlacementRequest) error {
	return r.db.WithContext(ctx).Save(r.mapper.RequestToModel(pr)).Error
}

func (r *placementRequestRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.PlacementRequest, error) {
	var row model.PlacementRequest
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RequestToEntity(&row), nil
}

func (r *placementRequestRepositoryImpl) findAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlacementRequest, error) {
	var rows []*model.PlacementRequest
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	var result []*entity.PlacementRequest
	for _, row := range rows {
		result = append(result, r.mapper.RequestToEntity(row))
	}
	return result, nil
}

func (r *placementRequestRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.PlacementRequest, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *placementRequestRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementRequest, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *placementRequestRepositoryImpl) FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.PlacementRequest, error) {
	return r.findAll(ctx, specification.ByApplicationID{ApplicationID: applicationId})
}

func (r *placementRequestRepositoryImpl) FindByPlacementApplicationId(ctx context.Context, placementApplicationId uuid.UUID) ([]*entity.PlacementRequest, error) {
	return r.findAll(ctx, specification.ByPlacementApplicationID{PlacementApplicationID: placementApplicationId})
}
