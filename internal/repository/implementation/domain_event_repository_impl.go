package implementation

import (
	"context"
	"errors"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/mapper"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/internal/repository/scope"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type domainEventRepositoryImpl struct {
	db *gorm.DB
}

func NewDomainEventRepository(db *gorm.DB) contract.DomainEventRepository {
	return &domainEventRepositoryImpl{db: db}
}

func (r *domainEventRepositoryImpl) Create(ctx context.Context, event *entity.DomainEvent) error {
	err := r.db.WithContext(ctx).Create(mapper.DomainEventToModel(event)).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperror.Conflict("domain event", event.Id, "domain event already recorded")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("domain event", event.Id, "domain event already recorded")
	}
	return err
}

func (r *domainEventRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.DomainEvent, error) {
	var row model.DomainEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.DomainEventToEntity(&row), nil
}

func (r *domainEventRepositoryImpl) FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.DomainEvent, error) {
	var rows []*model.DomainEvent
	err := r.db.WithContext(ctx).
		Scopes(scope.OrderByCreatedAsc).
		Where("application_id = ?", applicationId).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*entity.DomainEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapper.DomainEventToEntity(row))
	}
	return result, nil
}
