package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"placement-engine-be/internal/constant"
	"placement-engine-be/internal/dto"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/model"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/mailer"
	"placement-engine-be/internal/pkg/offender"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/internal/service"
	"placement-engine-be/pkg/calendar"
	"placement-engine-be/pkg/database"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/placement/conflict"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct{}

func (stubLookup) GetOffenderByCrn(_ context.Context, crn string) (*offender.PersonDetails, error) {
	return &offender.PersonDetails{Crn: crn, Name: "Integration Person"}, nil
}

func (stubLookup) GetStaffByUserId(_ context.Context, userId uuid.UUID) (*offender.StaffDetails, error) {
	return &offender.StaffDetails{UserId: userId, StaffCode: "INT001"}, nil
}

func TestGormBookingLifecycle(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false, database.DefaultPoolConfig())
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.All()...))

	ctx := context.Background()
	nop := logger.NewNopLogger()
	config := service.EngineConfig{EmitEnabled: true, ReopenOnAppeal: true}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	detector := conflict.NewDetector(calendar.New())
	domainEvents := service.NewDomainEventService(uowFactory, events.EmitterFunc(func(context.Context, events.Event) error { return nil }), config, nop)
	recorder := service.NewEventRecorder(domainEvents, stubLookup{}, stubLookup{})
	notifier := service.NewBookingNotifier(mailer.NopDispatcher{}, config, nop)
	premises := service.NewPremisesService(uowFactory, detector, config, nop)
	bookings := service.NewBookingService(uowFactory, recorder, notifier, detector, config, nop)

	_, err = premises.SeedReferenceData(ctx)
	require.NoError(t, err)

	p := &entity.Premises{
		Kind:                  entity.ServiceKindTemporaryAccommodation,
		Name:                  "Integration House " + uuid.NewString()[:8],
		EmailAddress:          "integration@example.com",
		TurnaroundWorkingDays: 2,
	}
	require.NoError(t, premises.CreatePremises(ctx, p))
	bed := &entity.Bed{PremisesId: p.Id, Name: "Bed 1", RoomName: "Room 1"}
	require.NoError(t, premises.CreateBed(ctx, bed))

	manager := entity.Actor{Id: uuid.New(), Roles: []entity.UserRole{entity.UserRoleManager}}
	request := func(arrival, departure time.Time) *dto.CreateBookingRequest {
		return &dto.CreateBookingRequest{
			Kind:          entity.ServiceKindTemporaryAccommodation,
			Crn:           "X000001",
			PremisesId:    p.Id,
			BedId:         bed.Id,
			ArrivalDate:   arrival,
			DepartureDate: departure,
		}
	}

	booking, err := bookings.CreateBooking(ctx, manager, request(calendar.Date(2030, 3, 4), calendar.Date(2030, 3, 8)))
	require.NoError(t, err)

	t.Run("turnaround blocks the next working day", func(t *testing.T) {
		_, err := bookings.CreateBooking(ctx, manager, request(calendar.Date(2030, 3, 11), calendar.Date(2030, 3, 15)))
		var conflictErr *apperror.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, booking.Id, conflictErr.ConflictingId)
	})

	t.Run("cancel frees the bed", func(t *testing.T) {
		reasonId := constant.CancellationReasonPersonNoLongerRequires
		result, err := bookings.CancelBooking(ctx, manager, booking.Id, &dto.CancelBookingRequest{ReasonId: &reasonId})
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, result.Booking.Status)

		uow := uowFactory.NewUnitOfWork(ctx)
		stored, err := uow.BookingRepository().FindById(ctx, booking.Id)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, stored.Status)

		_, err = bookings.CreateBooking(ctx, manager, request(calendar.Date(2030, 3, 11), calendar.Date(2030, 3, 15)))
		assert.NoError(t, err)
	})

	t.Run("extension after arrival updates the stored arrival", func(t *testing.T) {
		stay, err := bookings.CreateBooking(ctx, manager, request(calendar.Date(2030, 4, 1), calendar.Date(2030, 4, 5)))
		require.NoError(t, err)
		_, err = bookings.RecordArrival(ctx, manager, stay.Id, &dto.ArrivalRequest{
			ArrivalDate:           calendar.Date(2030, 4, 1),
			ExpectedDepartureDate: calendar.Date(2030, 4, 5),
		})
		require.NoError(t, err)
		_, err = bookings.RecordExtension(ctx, manager, stay.Id, &dto.ExtensionRequest{NewDepartureDate: calendar.Date(2030, 4, 9)})
		require.NoError(t, err)

		stored, err := uowFactory.NewUnitOfWork(ctx).BookingRepository().FindById(ctx, stay.Id)
		require.NoError(t, err)
		require.NotNil(t, stored.Arrival)
		assert.True(t, calendar.Date(2030, 4, 9).Equal(calendar.Day(stored.Arrival.ExpectedDepartureDate)))
		assert.Len(t, stored.Extensions, 1)
	})
}
