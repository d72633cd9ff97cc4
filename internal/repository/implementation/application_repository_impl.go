package implementation

import (
	"context"
	"errors"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/mapper"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type applicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApplicationMapper
}

func NewApplicationRepository(db *gorm.DB) contract.ApplicationRepository {
	return &applicationRepositoryImpl{db: db, mapper: mapper.NewApplicationMapper()}
}

func (r *applicationRepositoryImpl) Create(ctx context.Context, application *entity.Application) error {
	return r.db.WithContext(ctx).Create(r.mapper.ToModel(application)).Error
}

func (r *applicationRepositoryImpl) Update(ctx context.Context, application *entity.Application) error {
	return r.db.WithContext(ctx).Save(r.mapper.ToModel(application)).Error
}

func (r *applicationRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Application, error) {
	var row model.Application
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
	return r.mapper.ToEntity(&row), nil
}

func (r *applicationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *applicationRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *applicationRepositoryImpl) FindLatestSubmitted(ctx context.Context, crn string, kind entity.ServiceKind) (*entity.Application, error) {
	return r.findOne(ctx,
		specification.ByCrnAndKind{Crn: crn, Kind: string(kind)},
		specification.Submitted{},
		specification.OrderBy{Field: "submitted_at", Desc: true},
	)
}

type offlineApplicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ApplicationMapper
}

func NewOfflineApplicationRepository(db *gorm.DB) contract.OfflineApplicationRepository {
	return &offlineApplicationRepositoryImpl{db: db, mapper: mapper.NewApplicationMapper()}
}

func (r *offlineApplicationRepositoryImpl) Create(ctx context.Context, application *entity.OfflineApplication) error {
	return r.db.WithContext(ctx).Create(r.mapper.OfflineToModel(application)).Error
}

func (r *offlineApplicationRepositoryImpl) FindLatestByCrn(ctx context.Context, crn string, kind entity.ServiceKind) (*entity.OfflineApplication, error) {
	var row model.OfflineApplication
	err := r.db.WithContext(ctx).
		Scopes(specification.ByCrnAndKind{Crn: crn, Kind: string(kind)}.Apply).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.OfflineToEntity(&row), nil
}
