// FILE: internal/entity/booking_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusProvisional BookingStatus = "provisional"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusArrived     BookingStatus = "arrived"
	BookingStatusDeparted    BookingStatus = "departed"
	BookingStatusNotArrived  BookingStatus = "not-arrived"
	BookingStatusCancelled   BookingStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transition may leave the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusDeparted || s == BookingStatusCancelled || s == BookingStatusNotArrived
}

// Booking is the scheduling unit. Status is stored and mutated at each transition.
type Booking struct {
	Id                    uuid.UUID
	Kind                  ServiceKind
	Crn                   string
	NomsNumber            string
	PremisesId            uuid.UUID
	BedId                 *uuid.UUID
	ApplicationId         *uuid.UUID
	OfflineApplicationId  *uuid.UUID
	PlacementRequestId    *uuid.UUID
	ArrivalDate           time.Time
	DepartureDate         time.Time
	OriginalArrivalDate   time.Time
	OriginalDepartureDate time.Time
	Status                BookingStatus
	CreatedAt             time.Time
	Version               int

	Arrival      *Arrival
	Departure    *Departure
	NonArrival   *NonArrival
	Cancellation *Cancellation
	Confirmation *Confirmation
	Extensions   []Extension
	DateChanges  []DateChange
	Turnarounds  []Turnaround
	BedMoves     []BedMove
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled || b.Cancellation != nil
}

// IsActive reports whether the booking still holds its bed.
func (b *Booking) IsActive() bool {
	return !b.IsCancelled() && b.NonArrival == nil
}

// CurrentTurnaround returns the most recently recorded turnaround, if any. On equal timestamps
// the later entry wins.
func (b *Booking) CurrentTurnaround() *Turnaround {
	var latest *Turnaround
	for i := range b.Turnarounds {
		t := &b.Turnarounds[i]
		if latest == nil || !t.CreatedAt.Before(latest.CreatedAt) {
			latest = t
		}
	}
	return latest
}

// TurnaroundWorkingDays returns the working-day buffer currently applied after departure.
func (b *Booking) TurnaroundWorkingDays() int {
	if t := b.CurrentTurnaround(); t != nil {
		return t.WorkingDayCount
	}
	return 0
}

type Arrival struct {
	Id                    uuid.UUID
	BookingId             uuid.UUID
	ArrivalDate           time.Time
	ExpectedDepartureDate time.Time
	KeyWorkerStaffCode    string
	Notes                 string
	CreatedAt             time.Time
}

type Departure struct {
	Id                    uuid.UUID
	BookingId             uuid.UUID
	DateTime              time.Time
	ReasonId              uuid.UUID
	MoveOnCategoryId      *uuid.UUID
	DestinationProviderId *uuid.UUID
	Notes                 string
	CreatedAt             time.Time
}

type NonArrival struct {
	Id        uuid.UUID
	BookingId uuid.UUID
	Date      time.Time
	ReasonId  uuid.UUID
	Notes     string
	CreatedAt time.Time
}

type Cancellation struct {
	Id          uuid.UUID
	BookingId   uuid.UUID
	Date        time.Time
	ReasonId    uuid.UUID
	OtherReason string
	Notes       string
	CreatedAt   time.Time
}

type Confirmation struct {
	Id        uuid.UUID
	BookingId uuid.UUID
	DateTime  time.Time
	Notes     string
	CreatedAt time.Time
}

type Extension struct {
	Id                    uuid.UUID
	BookingId             uuid.UUID
	PreviousDepartureDate time.Time
	NewDepartureDate      time.Time
	Notes                 string
	CreatedAt             time.Time
}

type DateChange struct {
	Id                    uuid.UUID
	BookingId             uuid.UUID
	PreviousArrivalDate   time.Time
	PreviousDepartureDate time.Time
	NewArrivalDate        time.Time
	NewDepartureDate      time.Time
	ChangedByUserId       uuid.UUID
	CreatedAt             time.Time
}

// Turnaround is the working-day buffer after departure during which the bed stays unavailable.
type Turnaround struct {
	Id              uuid.UUID
	BookingId       uuid.UUID
	WorkingDayCount int
	CreatedAt       time.Time
}

type BedMove struct {
	Id              uuid.UUID
	BookingId       uuid.UUID
	PreviousBedId   *uuid.UUID
	NewBedId        uuid.UUID
	Notes           string
	CreatedByUserId uuid.UUID
	CreatedAt       time.Time
}
