package mapper

import (
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/model"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}

	booking := &entity.Booking{
		Id:                    b.Id,
		Kind:                  entity.ServiceKind(b.Kind),
		Crn:                   b.Crn,
		NomsNumber:            b.NomsNumber,
		PremisesId:            b.PremisesId,
		BedId:                 b.BedId,
		ApplicationId:         b.ApplicationId,
		OfflineApplicationId:  b.OfflineApplicationId,
		PlacementRequestId:    b.PlacementRequestId,
		ArrivalDate:           b.ArrivalDate,
		DepartureDate:         b.DepartureDate,
		OriginalArrivalDate:   b.OriginalArrivalDate,
		OriginalDepartureDate: b.OriginalDepartureDate,
		Status:                entity.BookingStatus(b.Status),
		CreatedAt:             b.CreatedAt,
		Version:               b.Version,
	}

	if a := b.Arrival; a != nil {
		booking.Arrival = &entity.Arrival{
			Id:                    a.Id,
			BookingId:             a.BookingId,
			ArrivalDate:           a.ArrivalDate,
			ExpectedDepartureDate: a.ExpectedDepartureDate,
			KeyWorkerStaffCode:    a.KeyWorkerStaffCode,
			Notes:                 a.Notes,
			CreatedAt:             a.CreatedAt,
		}
	}
	if d := b.Departure; d != nil {
		booking.Departure = &entity.Departure{
			Id:                    d.Id,
			BookingId:             d.BookingId,
			DateTime:              d.DateTime,
			ReasonId:              d.ReasonId,
			MoveOnCategoryId:      d.MoveOnCategoryId,
			DestinationProviderId: d.DestinationProviderId,
			Notes:                 d.Notes,
			CreatedAt:             d.CreatedAt,
		}
	}
	if n := b.NonArrival; n != nil {
		booking.NonArrival = &entity.NonArrival{
			Id:        n.Id,
			BookingId: n.BookingId,
			Date:      n.Date,
			ReasonId:  n.ReasonId,
			Notes:     n.Notes,
			CreatedAt: n.CreatedAt,
		}
	}
	if c := b.Cancellation; c != nil {
		booking.Cancellation = &entity.Cancellation{
			Id:          c.Id,
			BookingId:   c.BookingId,
			Date:        c.Date,
			ReasonId:    c.ReasonId,
			OtherReason: c.OtherReason,
			Notes:       c.Notes,
			CreatedAt:   c.CreatedAt,
		}
	}
	if c := b.Confirmation; c != nil {
		booking.Confirmation = &entity.Confirmation{
			Id:        c.Id,
			BookingId: c.BookingId,
			DateTime:  c.DateTime,
			Notes:     c.Notes,
			CreatedAt: c.CreatedAt,
		}
	}

	for _, e := range b.Extensions {
		booking.Extensions = append(booking.Extensions, entity.Extension{
			Id:                    e.Id,
			BookingId:             e.BookingId,
			PreviousDepartureDate: e.PreviousDepartureDate,
			NewDepartureDate:      e.NewDepartureDate,
			Notes:                 e.Notes,
			CreatedAt:             e.CreatedAt,
		})
	}
	for _, dc := range b.DateChanges {
		booking.DateChanges = append(booking.DateChanges, entity.DateChange{
			Id:                    dc.Id,
			BookingId:             dc.BookingId,
			PreviousArrivalDate:   dc.PreviousArrivalDate,
			PreviousDepartureDate: dc.PreviousDepartureDate,
			NewArrivalDate:        dc.NewArrivalDate,
			NewDepartureDate:      dc.NewDepartureDate,
			ChangedByUserId:       dc.ChangedByUserId,
			CreatedAt:             dc.CreatedAt,
		})
	}
	for _, t := range b.Turnarounds {
		booking.Turnarounds = append(booking.Turnarounds, entity.Turnaround{
			Id:              t.Id,
			BookingId:       t.BookingId,
			WorkingDayCount: t.WorkingDayCount,
			CreatedAt:       t.CreatedAt,
		})
	}
	for _, bm := range b.BedMoves {
		booking.BedMoves = append(booking.BedMoves, entity.BedMove{
			Id:              bm.Id,
			BookingId:       bm.BookingId,
			PreviousBedId:   bm.PreviousBedId,
			NewBedId:        bm.NewBedId,
			Notes:           bm.Notes,
			CreatedByUserId: bm.CreatedByUserId,
			CreatedAt:       bm.CreatedAt,
		})
	}

	return booking
}

// ToModel maps the booking row only; child records go through ToChildModels.
func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}

	return &model.Booking{
		Id:                    b.Id,
		Kind:                  string(b.Kind),
		Crn:                   b.Crn,
		NomsNumber:            b.NomsNumber,
		PremisesId:            b.PremisesId,
		BedId:                 b.BedId,
		ApplicationId:         b.ApplicationId,
		OfflineApplicationId:  b.OfflineApplicationId,
		PlacementRequestId:    b.PlacementRequestId,
		ArrivalDate:           b.ArrivalDate,
		DepartureDate:         b.DepartureDate,
		OriginalArrivalDate:   b.OriginalArrivalDate,
		OriginalDepartureDate: b.OriginalDepartureDate,
		Status:                string(b.Status),
		CreatedAt:             b.CreatedAt,
		Version:               b.Version,
	}
}

// ToChildModels flattens the append-only child records for insert-if-absent.
func (m *BookingMapper) ToChildModels(b *entity.Booking) []interface{} {
	var rows []interface{}

	if a := b.Arrival; a != nil {
		rows = append(rows, &model.Arrival{
			Id:                    a.Id,
			BookingId:             b.Id,
			ArrivalDate:           a.ArrivalDate,
			ExpectedDepartureDate: a.ExpectedDepartureDate,
			KeyWorkerStaffCode:    a.KeyWorkerStaffCode,
			Notes:                 a.Notes,
			CreatedAt:             a.CreatedAt,
		})
	}
	if d := b.Departure; d != nil {
		rows = append(rows, &model.Departure{
			Id:                    d.Id,
			BookingId:             b.Id,
			DateTime:              d.DateTime,
			ReasonId:              d.ReasonId,
			MoveOnCategoryId:      d.MoveOnCategoryId,
			DestinationProviderId: d.DestinationProviderId,
			Notes:                 d.Notes,
			CreatedAt:             d.CreatedAt,
		})
	}
	if n := b.NonArrival; n != nil {
		rows = append(rows, &model.NonArrival{
			Id:        n.Id,
			BookingId: b.Id,
			Date:      n.Date,
			ReasonId:  n.ReasonId,
			Notes:     n.Notes,
			CreatedAt: n.CreatedAt,
		})
	}
	if c := b.Cancellation; c != nil {
		rows = append(rows, &model.Cancellation{
			Id:          c.Id,
			BookingId:   b.Id,
			Date:        c.Date,
			ReasonId:    c.ReasonId,
			OtherReason: c.OtherReason,
			Notes:       c.Notes,
			CreatedAt:   c.CreatedAt,
		})
	}
	if c := b.Confirmation; c != nil {
		rows = append(rows, &model.Confirmation{
			Id:        c.Id,
			BookingId: b.Id,
			DateTime:  c.DateTime,
			Notes:     c.Notes,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, e := range b.Extensions {
		rows = append(rows, &model.Extension{
			Id:                    e.Id,
			BookingId:             b.Id,
			PreviousDepartureDate: e.PreviousDepartureDate,
			NewDepartureDate:      e.NewDepartureDate,
			Notes:                 e.Notes,
			CreatedAt:             e.CreatedAt,
		})
	}
	for _, dc := range b.DateChanges {
		rows = append(rows, &model.DateChange{
			Id:                    dc.Id,
			BookingId:             b.Id,
			PreviousArrivalDate:   dc.PreviousArrivalDate,
			PreviousDepartureDate: dc.PreviousDepartureDate,
			NewArrivalDate:        dc.NewArrivalDate,
			NewDepartureDate:      dc.NewDepartureDate,
			ChangedByUserId:       dc.ChangedByUserId,
			CreatedAt:             dc.CreatedAt,
		})
	}
	for _, t := range b.Turnarounds {
		rows = append(rows, &model.Turnaround{
			Id:              t.Id,
			BookingId:       b.Id,
			WorkingDayCount: t.WorkingDayCount,
			CreatedAt:       t.CreatedAt,
		})
	}
	for _, bm := range b.BedMoves {
		rows = append(rows, &model.BedMove{
			Id:              bm.Id,
			BookingId:       b.Id,
			PreviousBedId:   bm.PreviousBedId,
			NewBedId:        bm.NewBedId,
			Notes:           bm.Notes,
			CreatedByUserId: bm.CreatedByUserId,
			CreatedAt:       bm.CreatedAt,
		})
	}

	return rows
}

func (m *BookingMapper) ToEntities(bookings []*model.Booking) []*entity.Booking {
	entities := make([]*entity.Booking, len(bookings))
	for i, b := range bookings {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
