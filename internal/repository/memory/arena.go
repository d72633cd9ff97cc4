package memory

import (
	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

// arena holds every aggregate keyed by id. Relationships are id-valued, so a transaction can
// work on a cloned arena and swap it in on commit.
type arena struct {
	applications          map[uuid.UUID]entity.Application
	offlineApplications   map[uuid.UUID]entity.OfflineApplication
	assessments           map[uuid.UUID]entity.Assessment
	placementApplications map[uuid.UUID]entity.PlacementApplication
	placementRequests     map[uuid.UUID]entity.PlacementRequest
	premises              map[uuid.UUID]entity.Premises
	beds                  map[uuid.UUID]entity.Bed
	lostBeds              map[uuid.UUID]entity.LostBed
	bookings              map[uuid.UUID]entity.Booking
	referenceData         map[uuid.UUID]entity.ReferenceData
	domainEvents          map[uuid.UUID]entity.DomainEvent
}

func newArena() *arena {
	return &arena{
		applications:          map[uuid.UUID]entity.Application{},
		offlineApplications:   map[uuid.UUID]entity.OfflineApplication{},
		assessments:           map[uuid.UUID]entity.Assessment{},
		placementApplications: map[uuid.UUID]entity.PlacementApplication{},
		placementRequests:     map[uuid.UUID]entity.PlacementRequest{},
		premises:              map[uuid.UUID]entity.Premises{},
		beds:                  map[uuid.UUID]entity.Bed{},
		lostBeds:              map[uuid.UUID]entity.LostBed{},
		bookings:              map[uuid.UUID]entity.Booking{},
		referenceData:         map[uuid.UUID]entity.ReferenceData{},
		domainEvents:          map[uuid.UUID]entity.DomainEvent{},
	}
}

func (a *arena) clone() *arena {
	c := newArena()
	for k, v := range a.applications {
		c.applications[k] = cloneApplication(v)
	}
	for k, v := range a.offlineApplications {
		c.offlineApplications[k] = v
	}
	for k, v := range a.assessments {
		c.assessments[k] = cloneAssessment(v)
	}
	for k, v := range a.placementApplications {
		c.placementApplications[k] = clonePlacementApplication(v)
	}
	for k, v := range a.placementRequests {
		c.placementRequests[k] = clonePlacementRequest(v)
	}
	for k, v := range a.premises {
		c.premises[k] = v
	}
	for k, v := range a.beds {
		c.beds[k] = v
	}
	for k, v := range a.lostBeds {
		c.lostBeds[k] = v
	}
	for k, v := range a.bookings {
		c.bookings[k] = cloneBooking(v)
	}
	for k, v := range a.referenceData {
		c.referenceData[k] = v
	}
	for k, v := range a.domainEvents {
		c.domainEvents[k] = cloneDomainEvent(v)
	}
	return c
}

func cloneApplication(a entity.Application) entity.Application {
	if a.ApprovedPremises != nil {
		ap := *a.ApprovedPremises
		a.ApprovedPremises = &ap
	}
	if a.TemporaryAccommodation != nil {
		ta := *a.TemporaryAccommodation
		a.TemporaryAccommodation = &ta
	}
	return a
}

func cloneAssessment(a entity.Assessment) entity.Assessment {
	a.ClarificationNotes = append([]entity.ClarificationNote(nil), a.ClarificationNotes...)
	return a
}

func clonePlacementApplication(p entity.PlacementApplication) entity.PlacementApplication {
	p.Dates = append([]entity.PlacementDate(nil), p.Dates...)
	return p
}

func clonePlacementRequest(p entity.PlacementRequest) entity.PlacementRequest {
	p.Requirements.EssentialCriteria = append([]string(nil), p.Requirements.EssentialCriteria...)
	p.Requirements.DesirableCriteria = append([]string(nil), p.Requirements.DesirableCriteria...)
	return p
}

// cloneBooking copies the child slices and records; callers may mutate the result freely.
func cloneBooking(b entity.Booking) entity.Booking {
	if b.Arrival != nil {
		v := *b.Arrival
		b.Arrival = &v
	}
	if b.Departure != nil {
		v := *b.Departure
		b.Departure = &v
	}
	if b.NonArrival != nil {
		v := *b.NonArrival
		b.NonArrival = &v
	}
	if b.Cancellation != nil {
		v := *b.Cancellation
		b.Cancellation = &v
	}
	if b.Confirmation != nil {
		v := *b.Confirmation
		b.Confirmation = &v
	}
	b.Extensions = append([]entity.Extension(nil), b.Extensions...)
	b.DateChanges = append([]entity.DateChange(nil), b.DateChanges...)
	b.Turnarounds = append([]entity.Turnaround(nil), b.Turnarounds...)
	b.BedMoves = append([]entity.BedMove(nil), b.BedMoves...)
	return b
}

func cloneDomainEvent(e entity.DomainEvent) entity.DomainEvent {
	e.Data = append([]byte(nil), e.Data...)
	return e
}
