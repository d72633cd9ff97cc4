package contract

import (
	"context"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

// DomainEventRepository is append-only: rows are never updated or deleted.
type DomainEventRepository interface {
	// Create fails with apperror.ConflictError when the id already exists.
	Create(ctx context.Context, event *entity.DomainEvent) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.DomainEvent, error)
	FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.DomainEvent, error)
}
