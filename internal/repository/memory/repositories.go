package memory

import (
	"context"
	"sort"
	"time"

	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

// Row locks are implicit: a transaction already holds the store-wide lock.

type applicationRepository struct{ uow *UnitOfWork }

func (r *applicationRepository) Create(_ context.Context, application *entity.Application) error {
	return r.uow.write(func(a *arena) error {
		if _, exists := a.applications[application.Id]; exists {
			return apperror.Conflict("application", application.Id, "application already exists")
		}
		a.applications[application.Id] = cloneApplication(*application)
		return nil
	})
}

func (r *applicationRepository) Update(_ context.Context, application *entity.Application) error {
	return r.uow.write(func(a *arena) error {
		a.applications[application.Id] = cloneApplication(*application)
		return nil
	})
}

func (r *applicationRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	var found *entity.Application
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.applications[id]; ok {
			c := cloneApplication(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *applicationRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	return r.FindById(ctx, id)
}

func (r *applicationRepository) FindLatestSubmitted(_ context.Context, crn string, kind entity.ServiceKind) (*entity.Application, error) {
	var found *entity.Application
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.applications {
			if v.Crn != crn || v.Kind != kind || v.SubmittedAt == nil {
				continue
			}
			if found == nil || v.SubmittedAt.After(*found.SubmittedAt) ||
				(v.SubmittedAt.Equal(*found.SubmittedAt) && v.Id.String() > found.Id.String()) {
				c := cloneApplication(v)
				found = &c
			}
		}
		return nil
	})
	return found, err
}

type offlineApplicationRepository struct{ uow *UnitOfWork }

func (r *offlineApplicationRepository) Create(_ context.Context, application *entity.OfflineApplication) error {
	return r.uow.write(func(a *arena) error {
		a.offlineApplications[application.Id] = *application
		return nil
	})
}

func (r *offlineApplicationRepository) FindLatestByCrn(_ context.Context, crn string, kind entity.ServiceKind) (*entity.OfflineApplication, error) {
	var found *entity.OfflineApplication
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.offlineApplications {
			if v.Crn != crn || v.Kind != kind {
				continue
			}
			if found == nil || v.CreatedAt.After(found.CreatedAt) {
				c := v
				found = &c
			}
		}
		return nil
	})
	return found, err
}

type assessmentRepository struct{ uow *UnitOfWork }

func (r *assessmentRepository) Create(_ context.Context, assessment *entity.Assessment) error {
	return r.uow.write(func(a *arena) error {
		a.assessments[assessment.Id] = cloneAssessment(*assessment)
		return nil
	})
}

// Update keeps the stored notes; notes change only through SaveClarificationNote.
func (r *assessmentRepository) Update(_ context.Context, assessment *entity.Assessment) error {
	return r.uow.write(func(a *arena) error {
		stored, ok := a.assessments[assessment.Id]
		if !ok {
			return apperror.NotFound("assessment", assessment.Id)
		}
		updated := cloneAssessment(*assessment)
		updated.ClarificationNotes = stored.ClarificationNotes
		a.assessments[assessment.Id] = updated
		return nil
	})
}

func (r *assessmentRepository) SaveClarificationNote(_ context.Context, note *entity.ClarificationNote) error {
	return r.uow.write(func(a *arena) error {
		stored, ok := a.assessments[note.AssessmentId]
		if !ok {
			return apperror.NotFound("assessment", note.AssessmentId)
		}
		stored = cloneAssessment(stored)
		for i := range stored.ClarificationNotes {
			if stored.ClarificationNotes[i].Id == note.Id {
				stored.ClarificationNotes[i] = *note
				a.assessments[stored.Id] = stored
				return nil
			}
		}
		stored.ClarificationNotes = append(stored.ClarificationNotes, *note)
		a.assessments[stored.Id] = stored
		return nil
	})
}

func (r *assessmentRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Assessment, error) {
	var found *entity.Assessment
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.assessments[id]; ok {
			c := cloneAssessment(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *assessmentRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Assessment, error) {
	return r.FindById(ctx, id)
}

func (r *assessmentRepository) FindByApplicationId(_ context.Context, applicationId uuid.UUID) ([]*entity.Assessment, error) {
	var result []*entity.Assessment
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.assessments {
			if v.ApplicationId == applicationId {
				c := cloneAssessment(v)
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return createdBefore(result[i].CreatedAt, result[j].CreatedAt, result[i].Id, result[j].Id)
	})
	return result, err
}

type placementApplicationRepository struct{ uow *UnitOfWork }

func (r *placementApplicationRepository) Create(_ context.Context, pa *entity.PlacementApplication) error {
	return r.uow.write(func(a *arena) error {
		a.placementApplications[pa.Id] = clonePlacementApplication(*pa)
		return nil
	})
}

func (r *placementApplicationRepository) Update(_ context.Context, pa *entity.PlacementApplication) error {
	return r.uow.write(func(a *arena) error {
		a.placementApplications[pa.Id] = clonePlacementApplication(*pa)
		return nil
	})
}

func (r *placementApplicationRepository) FindById(_ context.Context, id uuid.UUID) (*entity.PlacementApplication, error) {
	var found *entity.PlacementApplication
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.placementApplications[id]; ok {
			c := clonePlacementApplication(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *placementApplicationRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementApplication, error) {
	return r.FindById(ctx, id)
}

func (r *placementApplicationRepository) FindByApplicationId(_ context.Context, applicationId uuid.UUID) ([]*entity.PlacementApplication, error) {
	var result []*entity.PlacementApplication
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.placementApplications {
			if v.ApplicationId == applicationId {
				c := clonePlacementApplication(v)
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return createdBefore(result[i].CreatedAt, result[j].CreatedAt, result[i].Id, result[j].Id)
	})
	return result, err
}

type placementRequestRepository struct{ uow *UnitOfWork }

func (r *placementRequestRepository) Create(_ context.Context, pr *entity.PlacementRequest) error {
	return r.uow.write(func(a *arena) error {
		a.placementRequests[pr.Id] = clonePlacementRequest(*pr)
		return nil
	})
}

func (r *placementRequestRepository) Update(_ context.Context, pr *entity.PlacementRequest) error {
	return r.uow.write(func(a *arena) error {
		a.placementRequests[pr.Id] = clonePlacementRequest(*pr)
		return nil
	})
}

func (r *placementRequestRepository) FindById(_ context.Context, id uuid.UUID) (*entity.PlacementRequest, error) {
	var found *entity.PlacementRequest
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.placementRequests[id]; ok {
			c := clonePlacementRequest(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *placementRequestRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.PlacementRequest, error) {
	return r.FindById(ctx, id)
}

func (r *placementRequestRepository) filter(match func(entity.PlacementRequest) bool) ([]*entity.PlacementRequest, error) {
	var result []*entity.PlacementRequest
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.placementRequests {
			if match(v) {
				c := clonePlacementRequest(v)
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return createdBefore(result[i].CreatedAt, result[j].CreatedAt, result[i].Id, result[j].Id)
	})
	return result, err
}

func (r *placementRequestRepository) FindByApplicationId(_ context.Context, applicationId uuid.UUID) ([]*entity.PlacementRequest, error) {
	return r.filter(func(pr entity.PlacementRequest) bool { return pr.ApplicationId == applicationId })
}

func (r *placementRequestRepository) FindByPlacementApplicationId(_ context.Context, placementApplicationId uuid.UUID) ([]*entity.PlacementRequest, error) {
	return r.filter(func(pr entity.PlacementRequest) bool {
		return pr.PlacementApplicationId != nil && *pr.PlacementApplicationId == placementApplicationId
	})
}

type premisesRepository struct{ uow *UnitOfWork }

func (r *premisesRepository) Create(_ context.Context, premises *entity.Premises) error {
	return r.uow.write(func(a *arena) error {
		a.premises[premises.Id] = *premises
		return nil
	})
}

func (r *premisesRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Premises, error) {
	var found *entity.Premises
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.premises[id]; ok {
			found = &v
		}
		return nil
	})
	return found, err
}

type bedRepository struct{ uow *UnitOfWork }

func (r *bedRepository) Create(_ context.Context, bed *entity.Bed) error {
	return r.uow.write(func(a *arena) error {
		a.beds[bed.Id] = *bed
		return nil
	})
}

func (r *bedRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Bed, error) {
	var found *entity.Bed
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.beds[id]; ok {
			found = &v
		}
		return nil
	})
	return found, err
}

func (r *bedRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bed, error) {
	return r.FindById(ctx, id)
}

type lostBedRepository struct{ uow *UnitOfWork }

func (r *lostBedRepository) Create(_ context.Context, lostBed *entity.LostBed) error {
	return r.uow.write(func(a *arena) error {
		a.lostBeds[lostBed.Id] = *lostBed
		return nil
	})
}

func (r *lostBedRepository) Update(_ context.Context, lostBed *entity.LostBed) error {
	return r.uow.write(func(a *arena) error {
		a.lostBeds[lostBed.Id] = *lostBed
		return nil
	})
}

func (r *lostBedRepository) FindById(_ context.Context, id uuid.UUID) (*entity.LostBed, error) {
	var found *entity.LostBed
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.lostBeds[id]; ok {
			found = &v
		}
		return nil
	})
	return found, err
}

func (r *lostBedRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.LostBed, error) {
	return r.FindById(ctx, id)
}

func (r *lostBedRepository) FindActiveOverlapping(_ context.Context, bedId uuid.UUID, from, to time.Time) ([]*entity.LostBed, error) {
	var result []*entity.LostBed
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.lostBeds {
			if v.BedId != bedId || v.IsCancelled {
				continue
			}
			if !v.StartDate.After(to) && !v.EndDate.Before(from) {
				c := v
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return createdBefore(result[i].StartDate, result[j].StartDate, result[i].Id, result[j].Id)
	})
	return result, err
}

type bookingRepository struct{ uow *UnitOfWork }

func (r *bookingRepository) Create(_ context.Context, booking *entity.Booking) error {
	return r.uow.write(func(a *arena) error {
		if _, exists := a.bookings[booking.Id]; exists {
			return apperror.Conflict("booking", booking.Id, "booking already exists")
		}
		if booking.Version == 0 {
			booking.Version = 1
		}
		a.bookings[booking.Id] = cloneBooking(*booking)
		return nil
	})
}

func (r *bookingRepository) Update(_ context.Context, booking *entity.Booking) error {
	return r.uow.write(func(a *arena) error {
		stored, ok := a.bookings[booking.Id]
		if !ok {
			return apperror.NotFound("booking", booking.Id)
		}
		if stored.Version != booking.Version {
			return apperror.Conflict("booking", booking.Id, "booking was modified concurrently")
		}
		booking.Version++
		a.bookings[booking.Id] = cloneBooking(*booking)
		return nil
	})
}

func (r *bookingRepository) FindById(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	var found *entity.Booking
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.bookings[id]; ok {
			c := cloneBooking(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *bookingRepository) FindByIdForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.FindById(ctx, id)
}

func (r *bookingRepository) filter(match func(entity.Booking) bool, less func(x, y *entity.Booking) bool) ([]*entity.Booking, error) {
	var result []*entity.Booking
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.bookings {
			if match(v) {
				c := cloneBooking(v)
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result, err
}

func byCreated(x, y *entity.Booking) bool {
	return createdBefore(x.CreatedAt, y.CreatedAt, x.Id, y.Id)
}

func (r *bookingRepository) FindActiveOnBedArrivingBefore(_ context.Context, bedId uuid.UUID, before time.Time) ([]*entity.Booking, error) {
	return r.filter(func(b entity.Booking) bool {
		return b.BedId != nil && *b.BedId == bedId &&
			b.Status != entity.BookingStatusCancelled && b.Status != entity.BookingStatusNotArrived &&
			b.ArrivalDate.Before(before)
	}, func(x, y *entity.Booking) bool {
		return createdBefore(x.ArrivalDate, y.ArrivalDate, x.Id, y.Id)
	})
}

func (r *bookingRepository) FindByApplicationId(_ context.Context, applicationId uuid.UUID) ([]*entity.Booking, error) {
	return r.filter(func(b entity.Booking) bool {
		return b.ApplicationId != nil && *b.ApplicationId == applicationId
	}, byCreated)
}

func (r *bookingRepository) FindByPlacementRequestId(_ context.Context, placementRequestId uuid.UUID) ([]*entity.Booking, error) {
	return r.filter(func(b entity.Booking) bool {
		return b.PlacementRequestId != nil && *b.PlacementRequestId == placementRequestId
	}, byCreated)
}

type referenceDataRepository struct{ uow *UnitOfWork }

func (r *referenceDataRepository) Create(_ context.Context, data *entity.ReferenceData) error {
	return r.uow.write(func(a *arena) error {
		a.referenceData[data.Id] = *data
		return nil
	})
}

func (r *referenceDataRepository) FindById(_ context.Context, id uuid.UUID) (*entity.ReferenceData, error) {
	var found *entity.ReferenceData
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.referenceData[id]; ok {
			found = &v
		}
		return nil
	})
	return found, err
}

func (r *referenceDataRepository) FindByCategory(_ context.Context, category entity.ReferenceCategory) ([]*entity.ReferenceData, error) {
	var result []*entity.ReferenceData
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.referenceData {
			if v.Category == category {
				c := v
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, err
}

type domainEventRepository struct{ uow *UnitOfWork }

func (r *domainEventRepository) Create(_ context.Context, event *entity.DomainEvent) error {
	return r.uow.write(func(a *arena) error {
		if _, exists := a.domainEvents[event.Id]; exists {
			return apperror.Conflict("domain event", event.Id, "domain event already recorded")
		}
		a.domainEvents[event.Id] = cloneDomainEvent(*event)
		return nil
	})
}

func (r *domainEventRepository) FindById(_ context.Context, id uuid.UUID) (*entity.DomainEvent, error) {
	var found *entity.DomainEvent
	err := r.uow.read(func(a *arena) error {
		if v, ok := a.domainEvents[id]; ok {
			c := cloneDomainEvent(v)
			found = &c
		}
		return nil
	})
	return found, err
}

func (r *domainEventRepository) FindByApplicationId(_ context.Context, applicationId uuid.UUID) ([]*entity.DomainEvent, error) {
	var result []*entity.DomainEvent
	err := r.uow.read(func(a *arena) error {
		for _, v := range a.domainEvents {
			if v.ApplicationId != nil && *v.ApplicationId == applicationId {
				c := cloneDomainEvent(v)
				result = append(result, &c)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return createdBefore(result[i].CreatedAt, result[j].CreatedAt, result[i].Id, result[j].Id)
	})
	return result, err
}

// createdBefore orders by time, breaking ties on id so map iteration order never leaks out.
func createdBefore(x, y time.Time, xId, yId uuid.UUID) bool {
	if !x.Equal(y) {
		return x.Before(y)
	}
	return xId.String() < yId.String()
}
