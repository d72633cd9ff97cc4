package implementation

import (
	"context"
	"errors"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/mapper"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type premisesRepositoryImpl struct {
	db *gorm.DB
}

func NewPremisesRepository(db *gorm.DB) contract.PremisesRepository {
	return &premisesRepositoryImpl{db: db}
}

func (r *premisesRepositoryImpl) Create(ctx context.Context, premises *entity.Premises) error {
	return r.db.WithContext(ctx).Create(mapper.PremisesToModel(premises)).Error
}

func (r *premisesRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Premises, error) {
	var row model.Premises
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.PremisesToEntity(&row), nil
}

type bedRepositoryImpl struct {
	db *gorm.DB
}

func NewBedRepository(db *gorm.DB) contract.BedRepository {
	return &bedRepositoryImpl{db: db}
}

func (r *bedRepositoryImpl) Create(ctx context.Context, bed *entity.Bed) error {
	return r.db.WithContext(ctx).Create(mapper.BedToModel(bed)).Error
}

func (r *bedRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Bed, error) {
	var row model.Bed
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
	return mapper.BedToEntity(&row), nil
}

func (r *bedRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Bed, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *bedRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bed, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

type lostBedRepositoryImpl struct {
	db *gorm.DB
}

func NewLostBedRepository(db *gorm.DB) contract.LostBedRepository {
	return &lostBedRepositoryImpl{db: db}
}

func (r *lostBedRepositoryImpl) Create(ctx context.Context, lostBed *entity.LostBed) error {
	return r.db.WithContext(ctx).Create(mapper.LostBedToModel(lostBed)).Error
}

func (r *lostBedRepositoryImpl) Update(ctx context.Context, lostBed *entity.LostBed) error {
	return r.db.WithContext(ctx).Save(mapper.LostBedToModel(lostBed)).Error
}

func (r *lostBedRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.LostBed, error) {
	var row model.LostBed
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
	return mapper.LostBedToEntity(&row), nil
}

func (r *lostBedRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.LostBed, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *lostBedRepositoryImpl) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.LostBed, error) {
	return r.findOne(ctx, specification.ForUpdate{}, specification.ByID{ID: id})
}

func (r *lostBedRepositoryImpl) FindActiveOverlapping(ctx context.Context, bedId uuid.UUID, from, to time.Time) ([]*entity.LostBed, error) {
	var rows []*model.LostBed
	query := r.db.WithContext(ctx)
	for _, spec := range []specification.Specification{
		specification.ByBedID{BedID: bedId},
		specification.LostBedOverlapping{From: from, To: to},
		specification.OrderBy{Field: "start_date"},
	} {
		query = spec.Apply(query)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	lostBeds := make([]*entity.LostBed, 0, len(rows))
	for _, row := range rows {
		lostBeds = append(lostBeds, mapper.LostBedToEntity(row))
	}
	return lostBeds, nil
}

type referenceDataRepositoryImpl struct {
	db *gorm.DB
}

func NewReferenceDataRepository(db *gorm.DB) contract.ReferenceDataRepository {
	return &referenceDataRepositoryImpl{db: db}
}

func (r *referenceDataRepositoryImpl) Create(ctx context.Context, data *entity.ReferenceData) error {
	return r.db.WithContext(ctx).Create(mapper.ReferenceDataToModel(data)).Error
}

func (r *referenceDataRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ReferenceData, error) {
	var row model.ReferenceData
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.ReferenceDataToEntity(&row), nil
}

func (r *referenceDataRepositoryImpl) FindByCategory(ctx context.Context, category entity.ReferenceCategory) ([]*entity.ReferenceData, error) {
	var rows []*model.ReferenceData
	err := specification.ByCategory{Category: string(category)}.
		Apply(r.db.WithContext(ctx)).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*entity.ReferenceData, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapper.ReferenceDataToEntity(row))
	}
	return result, nil
}
