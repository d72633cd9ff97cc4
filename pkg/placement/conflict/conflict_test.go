package conflict

import (
	"context"
	"testing"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/repository/memory"
	"placement-engine-be/pkg/calendar"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sevenDayWeek = calendar.New(calendar.WithWeekendDays())

func seedBooking(t *testing.T, repos Repositories, bedId uuid.UUID, arrival, departure time.Time, turnaround int, status entity.BookingStatus) *entity.Booking {
	t.Helper()
	b := &entity.Booking{
		Id:            uuid.New(),
		Kind:          entity.ServiceKindApprovedPremises,
		Crn:           "X320741",
		BedId:         &bedId,
		ArrivalDate:   arrival,
		DepartureDate: departure,
		Status:        status,
		CreatedAt:     time.Now(),
	}
	if turnaround > 0 {
		b.Turnarounds = []entity.Turnaround{{Id: uuid.New(), BookingId: b.Id, WorkingDayCount: turnaround, CreatedAt: time.Now()}}
	}
	if status == entity.BookingStatusCancelled {
		b.Cancellation = &entity.Cancellation{Id: uuid.New(), BookingId: b.Id, Date: arrival}
	}
	require.NoError(t, repos.BookingRepository().Create(context.Background(), b))
	return b
}

func TestClosedDate(t *testing.T) {
	weekdays := calendar.New()
	d := NewDetector(weekdays)

	tests := []struct {
		name       string
		departure  time.Time
		turnaround int
		want       time.Time
	}{
		{"no turnaround frees the departure day", calendar.Date(2024, 1, 20), 0, calendar.Date(2024, 1, 20)},
		{"two working days from a weekday", calendar.Date(2024, 1, 17), 2, calendar.Date(2024, 1, 20)},
		{"turnaround skips the weekend", calendar.Date(2024, 1, 19), 1, calendar.Date(2024, 1, 23)},
		{"saturday departure", calendar.Date(2024, 1, 20), 2, calendar.Date(2024, 1, 24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ClosedDate(tt.departure, tt.turnaround))
		})
	}
}

func TestOverlaps_IsSymmetric(t *testing.T) {
	w := func(from, to int) apperror.Window {
		return apperror.Window{Start: calendar.Date(2024, 1, from), End: calendar.Date(2024, 1, to)}
	}
	pairs := []struct {
		a, b apperror.Window
		want bool
	}{
		{w(10, 15), w(14, 20), true},
		{w(10, 15), w(15, 20), false},
		{w(10, 20), w(12, 13), true},
		{w(1, 2), w(5, 6), false},
		{w(10, 10), w(5, 20), false},
	}
	for _, p := range pairs {
		assert.Equal(t, p.want, Overlaps(p.a, p.b))
		assert.Equal(t, Overlaps(p.a, p.b), Overlaps(p.b, p.a))
	}
}

func TestCheck_ZeroNightStayIsSymmetric(t *testing.T) {
	ctx := context.Background()
	d := NewDetector(sevenDayWeek)

	tests := []struct {
		name               string
		existing, incoming [2]int
	}{
		{name: "existing zero-night stay inside candidate", existing: [2]int{15, 15}, incoming: [2]int{10, 20}},
		{name: "zero-night candidate inside existing stay", existing: [2]int{10, 20}, incoming: [2]int{15, 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := memory.NewStore().NewUnitOfWork(ctx)
			bedId := uuid.New()
			seedBooking(t, repos, bedId, calendar.Date(2024, 1, tt.existing[0]), calendar.Date(2024, 1, tt.existing[1]), 0, entity.BookingStatusConfirmed)

			err := d.Check(ctx, repos, Candidate{
				BedId:     bedId,
				Arrival:   calendar.Date(2024, 1, tt.incoming[0]),
				Departure: calendar.Date(2024, 1, tt.incoming[1]),
			})
			assert.NoError(t, err)
		})
	}
}

func TestCheck_TurnaroundBlocksFollowingArrival(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(sevenDayWeek)
	bedId := uuid.New()

	existing := seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 2, entity.BookingStatusConfirmed)

	err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 21), Departure: calendar.Date(2024, 1, 25)})
	require.Error(t, err)

	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, existing.Id, conflict.ConflictingId)
	assert.Equal(t, "booking", conflict.Entity)
	assert.Equal(t, calendar.Date(2024, 1, 23), conflict.Window.End)

	err = d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 23), Departure: calendar.Date(2024, 1, 25)})
	assert.NoError(t, err)
}

func TestCheck_TurnaroundSkipsWeekend(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(calendar.New())
	bedId := uuid.New()

	// Departure on Saturday 20th: turnaround covers Mon 22nd and Tue 23rd.
	seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 2, entity.BookingStatusConfirmed)

	err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 23), Departure: calendar.Date(2024, 1, 25)})
	assert.True(t, apperror.IsConflict(err))

	err = d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 24), Departure: calendar.Date(2024, 1, 25)})
	assert.NoError(t, err)
}

func TestCheck_SameDayTurnoverWithoutTurnaround(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(sevenDayWeek)
	bedId := uuid.New()

	seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 0, entity.BookingStatusArrived)

	err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 20), Departure: calendar.Date(2024, 1, 25)})
	assert.NoError(t, err)

	// The candidate's own turnaround reaches forward into the next stay.
	seedBooking(t, repos, bedId, calendar.Date(2024, 1, 27), calendar.Date(2024, 2, 2), 0, entity.BookingStatusConfirmed)
	err = d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 20), Departure: calendar.Date(2024, 1, 25), TurnaroundWorkingDays: 1})
	assert.NoError(t, err)
	err = d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 20), Departure: calendar.Date(2024, 1, 25), TurnaroundWorkingDays: 2})
	assert.True(t, apperror.IsConflict(err))
}

func TestCheck_IgnoresCancelledAndNonArrived(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(sevenDayWeek)
	bedId := uuid.New()

	seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 0, entity.BookingStatusCancelled)
	seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 0, entity.BookingStatusNotArrived)

	err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 12), Departure: calendar.Date(2024, 1, 14)})
	assert.NoError(t, err)
}

func TestCheck_ExcludesSelf(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(sevenDayWeek)
	bedId := uuid.New()

	self := seedBooking(t, repos, bedId, calendar.Date(2024, 1, 10), calendar.Date(2024, 1, 20), 0, entity.BookingStatusConfirmed)

	err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 1, 10), Departure: calendar.Date(2024, 1, 28), ExcludeBookingId: &self.Id})
	assert.NoError(t, err)
}

func TestCheck_LostBedIsInclusive(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().NewUnitOfWork(ctx)
	d := NewDetector(sevenDayWeek)
	bedId := uuid.New()

	lostBed := &entity.LostBed{
		Id:        uuid.New(),
		BedId:     bedId,
		StartDate: calendar.Date(2024, 2, 1),
		EndDate:   calendar.Date(2024, 2, 5),
	}
	require.NoError(t, repos.LostBedRepository().Create(ctx, lostBed))

	tests := []struct {
		name      string
		arrival   time.Time
		departure time.Time
		conflict  bool
	}{
		{"departs on lost bed start day", calendar.Date(2024, 1, 25), calendar.Date(2024, 2, 1), false},
		{"stays the first lost night", calendar.Date(2024, 1, 25), calendar.Date(2024, 2, 2), true},
		{"arrives on lost bed end day", calendar.Date(2024, 2, 5), calendar.Date(2024, 2, 8), true},
		{"arrives the day after", calendar.Date(2024, 2, 6), calendar.Date(2024, 2, 8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: tt.arrival, Departure: tt.departure})
			if tt.conflict {
				var conflict *apperror.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, "lost bed", conflict.Entity)
				assert.Equal(t, lostBed.Id, conflict.ConflictingId)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	lostBed.IsCancelled = true
	require.NoError(t, repos.LostBedRepository().Update(ctx, lostBed))
	assert.NoError(t, d.Check(ctx, repos, Candidate{BedId: bedId, Arrival: calendar.Date(2024, 2, 2), Departure: calendar.Date(2024, 2, 4)}))
}
