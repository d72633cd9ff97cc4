package contract

import (
	"context"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *entity.Application) error
	Update(ctx context.Context, application *entity.Application) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	// FindLatestSubmitted returns the newest submitted application for the person and service, or nil.
	FindLatestSubmitted(ctx context.Context, crn string, kind entity.ServiceKind) (*entity.Application, error)
}

type OfflineApplicationRepository interface {
	Create(ctx context.Context, application *entity.OfflineApplication) error
	FindLatestByCrn(ctx context.Context, crn string, kind entity.ServiceKind) (*entity.OfflineApplication, error)
}
