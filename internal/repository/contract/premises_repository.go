package contract

import (
	"context"
	"time"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type PremisesRepository interface {
	Create(ctx context.Context, premises *entity.Premises) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Premises, error)
}

type BedRepository interface {
	Create(ctx context.Context, bed *entity.Bed) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Bed, error)
	// FindByIdForUpdate takes the row lock that serialises scheduling on the bed.
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bed, error)
}

type LostBedRepository interface {
	Create(ctx context.Context, lostBed *entity.LostBed) error
	Update(ctx context.Context, lostBed *entity.LostBed) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.LostBed, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.LostBed, error)
	// FindActiveOverlapping returns non-cancelled lost beds on bedId whose inclusive
	// [StartDate, EndDate] intersects the inclusive [from, to].
	FindActiveOverlapping(ctx context.Context, bedId uuid.UUID, from, to time.Time) ([]*entity.LostBed, error)
}

type ReferenceDataRepository interface {
	Create(ctx context.Context, data *entity.ReferenceData) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ReferenceData, error)
	FindByCategory(ctx context.Context, category entity.ReferenceCategory) ([]*entity.ReferenceData, error)
}
