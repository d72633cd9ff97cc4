package contract

import (
	"context"
	"time"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

// BookingRepository persists the booking aggregate. Child records (arrival, cancellation,
// extensions, ...) are append-only and saved by Update alongside the booking row.
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	// Update bumps Version; a stale Version yields an apperror.ConflictError.
	Update(ctx context.Context, booking *entity.Booking) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindActiveOnBedArrivingBefore returns bookings on bedId that are neither cancelled nor
	// non-arrived and whose arrival date is before the given date.
	FindActiveOnBedArrivingBefore(ctx context.Context, bedId uuid.UUID, before time.Time) ([]*entity.Booking, error)
	FindByApplicationId(ctx context.Context, applicationId uuid.UUID) ([]*entity.Booking, error)
	FindByPlacementRequestId(ctx context.Context, placementRequestId uuid.UUID) ([]*entity.Booking, error)
}
