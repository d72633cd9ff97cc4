package memory

import (
	"context"
	"testing"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(bedId uuid.UUID, arrival time.Time) *entity.Booking {
	return &entity.Booking{
		Id:            uuid.New(),
		Kind:          entity.ServiceKindApprovedPremises,
		Crn:           "X320741",
		BedId:         &bedId,
		ArrivalDate:   arrival,
		DepartureDate: arrival.AddDate(0, 0, 7),
		Status:        entity.BookingStatusConfirmed,
		CreatedAt:     time.Now(),
	}
}

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	booking := newBooking(uuid.New(), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, uow.BookingRepository().Create(ctx, booking))

	hookRan := false
	uow.AfterCommit(func(context.Context) { hookRan = true })
	require.NoError(t, uow.Rollback())

	found, err := store.NewUnitOfWork(ctx).BookingRepository().FindById(ctx, booking.Id)
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.False(t, hookRan)
}

func TestUnitOfWork_CommitAppliesAndRunsHooks(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	booking := newBooking(uuid.New(), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, uow.BookingRepository().Create(ctx, booking))

	var seen *entity.Booking
	uow.AfterCommit(func(ctx context.Context) {
		// Hooks run after the lock is released, so a fresh unit can read.
		seen, _ = store.NewUnitOfWork(ctx).BookingRepository().FindById(ctx, booking.Id)
	})
	require.NoError(t, uow.Commit())

	require.NotNil(t, seen)
	assert.Equal(t, booking.Id, seen.Id)
	assert.Equal(t, 1, seen.Version)
}

func TestBookingRepository_StaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.NewUnitOfWork(ctx).BookingRepository()

	booking := newBooking(uuid.New(), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, booking))

	first, _ := repo.FindById(ctx, booking.Id)
	second, _ := repo.FindById(ctx, booking.Id)

	first.Status = entity.BookingStatusArrived
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Status = entity.BookingStatusCancelled
	err := repo.Update(ctx, second)
	assert.True(t, apperror.IsConflict(err))
}

func TestBookingRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.NewUnitOfWork(ctx).BookingRepository()

	booking := newBooking(uuid.New(), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, booking))

	loaded, _ := repo.FindById(ctx, booking.Id)
	loaded.Turnarounds = append(loaded.Turnarounds, entity.Turnaround{Id: uuid.New(), WorkingDayCount: 3})

	again, _ := repo.FindById(ctx, booking.Id)
	assert.Empty(t, again.Turnarounds)
}

func TestBookingRepository_FindActiveOnBed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.NewUnitOfWork(ctx).BookingRepository()
	bedId := uuid.New()

	live := newBooking(bedId, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	cancelled := newBooking(bedId, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
	cancelled.Status = entity.BookingStatusCancelled
	later := newBooking(bedId, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	otherBed := newBooking(uuid.New(), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	for _, b := range []*entity.Booking{live, cancelled, later, otherBed} {
		require.NoError(t, repo.Create(ctx, b))
	}

	found, err := repo.FindActiveOnBedArrivingBefore(ctx, bedId, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, live.Id, found[0].Id)
}

func TestDomainEventRepository_DuplicateIdConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().NewUnitOfWork(ctx).DomainEventRepository()

	event := &entity.DomainEvent{Id: uuid.New(), Type: "booking-made", Data: []byte(`{}`)}
	require.NoError(t, repo.Create(ctx, event))
	assert.True(t, apperror.IsConflict(repo.Create(ctx, event)))
}
