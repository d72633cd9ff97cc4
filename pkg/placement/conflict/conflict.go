// Package conflict decides whether a bed is free over a date range.
//
// A booking holds its bed over the half-open window [arrival, closedDate), where closedDate
// extends the departure by the booking's turnaround in working days. A lost bed holds its bed
// over [start, end] inclusive. Two windows conflict iff each starts before the other ends.
package conflict

import (
	"context"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"
	"placement-engine-be/internal/repository/contract"
	"placement-engine-be/pkg/calendar"

	"github.com/google/uuid"
)

// Repositories is the slice of a unit of work the detector reads from.
type Repositories interface {
	BookingRepository() contract.BookingRepository
	LostBedRepository() contract.LostBedRepository
}

type Detector struct {
	calendar calendar.WorkingDayCalendar
}

func NewDetector(cal calendar.WorkingDayCalendar) *Detector {
	return &Detector{calendar: cal}
}

// ClosedDate is the first day the bed is free again after a stay departing on departure.
// With no turnaround that is the departure day itself, so a same-day arrival does not conflict.
// Otherwise the turnaround working days are blocked inclusively.
func (d *Detector) ClosedDate(departure time.Time, turnaroundWorkingDays int) time.Time {
	departure = calendar.Day(departure)
	if turnaroundWorkingDays <= 0 {
		return departure
	}
	return d.calendar.AddWorkingDays(departure, turnaroundWorkingDays).AddDate(0, 0, 1)
}

// BookingWindow returns the half-open window the booking holds its bed for.
func (d *Detector) BookingWindow(b *entity.Booking) apperror.Window {
	return apperror.Window{
		Start: calendar.Day(b.ArrivalDate),
		End:   d.ClosedDate(b.DepartureDate, b.TurnaroundWorkingDays()),
	}
}

// LostBedWindow converts the inclusive lost bed range to a half-open window.
func LostBedWindow(l *entity.LostBed) apperror.Window {
	return apperror.Window{
		Start: calendar.Day(l.StartDate),
		End:   calendar.Day(l.EndDate).AddDate(0, 0, 1),
	}
}

// Overlaps reports whether two half-open windows intersect. It is symmetric, and an empty
// window overlaps nothing.
func Overlaps(a, b apperror.Window) bool {
	if !a.Start.Before(a.End) || !b.Start.Before(b.End) {
		return false
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FindConflictingBooking returns the earliest live booking on bedId whose window meets
// [arrival, closedDate), skipping excludeBookingId.
func (d *Detector) FindConflictingBooking(
	ctx context.Context,
	repos Repositories,
	bedId uuid.UUID,
	arrival, closedDate time.Time,
	excludeBookingId *uuid.UUID,
) (*entity.Booking, error) {
	candidate := apperror.Window{Start: calendar.Day(arrival), End: calendar.Day(closedDate)}

	bookings, err := repos.BookingRepository().FindActiveOnBedArrivingBefore(ctx, bedId, candidate.End)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		if excludeBookingId != nil && b.Id == *excludeBookingId {
			continue
		}
		if !b.IsActive() {
			continue
		}
		if Overlaps(candidate, d.BookingWindow(b)) {
			return b, nil
		}
	}
	return nil, nil
}

// FindConflictingLostBed returns the earliest non-cancelled lost bed on bedId meeting the
// inclusive range [from, to], skipping excludeLostBedId.
func (d *Detector) FindConflictingLostBed(
	ctx context.Context,
	repos Repositories,
	bedId uuid.UUID,
	from, to time.Time,
	excludeLostBedId *uuid.UUID,
) (*entity.LostBed, error) {
	from, to = calendar.Day(from), calendar.Day(to)
	if to.Before(from) {
		return nil, nil
	}

	lostBeds, err := repos.LostBedRepository().FindActiveOverlapping(ctx, bedId, from, to)
	if err != nil {
		return nil, err
	}

	for _, l := range lostBeds {
		if excludeLostBedId != nil && l.Id == *excludeLostBedId {
			continue
		}
		if l.IsCancelled {
			continue
		}
		return l, nil
	}
	return nil, nil
}

// Candidate describes a stay being placed on a bed.
type Candidate struct {
	BedId                 uuid.UUID
	Arrival               time.Time
	Departure             time.Time
	TurnaroundWorkingDays int
	ExcludeBookingId      *uuid.UUID
}

// Window is the half-open window the candidate would hold.
func (d *Detector) Window(c Candidate) apperror.Window {
	return apperror.Window{
		Start: calendar.Day(c.Arrival),
		End:   d.ClosedDate(c.Departure, c.TurnaroundWorkingDays),
	}
}

// Check returns an *apperror.ConflictError naming the first booking or lost bed in the way.
func (d *Detector) Check(ctx context.Context, repos Repositories, c Candidate) error {
	window := d.Window(c)

	booking, err := d.FindConflictingBooking(ctx, repos, c.BedId, window.Start, window.End, c.ExcludeBookingId)
	if err != nil {
		return err
	}
	if booking != nil {
		w := d.BookingWindow(booking)
		return &apperror.ConflictError{
			ConflictingId: booking.Id,
			Entity:        "booking",
			Window:        &w,
			Message:       "a booking already exists for these dates",
		}
	}

	lostBed, err := d.FindConflictingLostBed(ctx, repos, c.BedId, window.Start, window.End.AddDate(0, 0, -1), nil)
	if err != nil {
		return err
	}
	if lostBed != nil {
		w := LostBedWindow(lostBed)
		return &apperror.ConflictError{
			ConflictingId: lostBed.Id,
			Entity:        "lost bed",
			Window:        &w,
			Message:       "the bed is out of service for these dates",
		}
	}
	return nil
}
