package contract

import (
	"context"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type PlacementApplicationRepository interface {
	Create(ctx context.Context, placementApplication *entity.PlacementApplication) error
	Update(ctx context.Context, placementApplication *entity.PlacementApplication) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.PlacementApplication, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementApplication, error)
	FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.PlacementApplication, error)
}

type PlacementRequestRepository interface {
	Create(ctx context.Context, placementRequest *entity.PlacementRequest) error
	Update(ctx context.Context, placementRequest *entity.PlacementRequest) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.PlacementRequest, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementRequest, error)
	FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.PlacementRequest, error)
	FindByPlacementApplicationId(ctx context.Context, placementApplicationId uuid.UUID) ([]*entity.PlacementRequest, error)
}
