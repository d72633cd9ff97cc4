// Package status derives an application's status from the current state of its assessment,
// placement requests and bookings. Nothing is stored; the status is recomputed on every read.
package status

import (
	"sort"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type Status string

const (
	Withdrawn                   Status = "withdrawn"
	Inapplicable                Status = "inapplicable"
	InProgress                  Status = "inProgress"
	RequestedFurtherInformation Status = "requestedFurtherInformation"
	Rejected                    Status = "rejected"
	Placed                      Status = "placed"
	AwaitingPlacement           Status = "awaitingPlacement"
	Pending                     Status = "pending"
	Submitted                   Status = "submitted"
)

// Inputs is the slice of the arena a derivation reads.
type Inputs struct {
	Application       *entity.Application
	LatestAssessment  *entity.Assessment
	PlacementRequests []*entity.PlacementRequest
	Bookings          []*entity.Booking
}

// HasActiveBooking reports whether a non-cancelled booking is linked to the placement request.
func (in Inputs) HasActiveBooking(placementRequestId uuid.UUID) bool {
	for _, b := range in.Bookings {
		if b.PlacementRequestId == nil || *b.PlacementRequestId != placementRequestId {
			continue
		}
		if !b.IsCancelled() {
			return true
		}
	}
	return false
}

// livePlacementRequests returns the placement requests spawned by the latest assessment that
// are neither withdrawn nor superseded by reallocation.
func (in Inputs) livePlacementRequests() []*entity.PlacementRequest {
	if in.LatestAssessment == nil {
		return nil
	}
	var out []*entity.PlacementRequest
	for _, pr := range in.PlacementRequests {
		if pr.AssessmentId != in.LatestAssessment.Id || pr.IsWithdrawn || pr.ReallocatedAt != nil {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// Deriver computes the status for one service kind.
type Deriver interface {
	Derive(in Inputs) Status
}

type approvedPremisesDeriver struct{}

func (approvedPremisesDeriver) Derive(in Inputs) Status {
	app := in.Application
	latest := in.LatestAssessment

	switch {
	case app.IsWithdrawn:
		return Withdrawn
	case app.IsInapplicable:
		return Inapplicable
	case !app.IsSubmitted():
		return InProgress
	case latest == nil:
		return Submitted
	case latest.HasUnansweredNote():
		return RequestedFurtherInformation
	case latest.Decision == entity.AssessmentDecisionRejected:
		return Rejected
	case latest.Decision != entity.AssessmentDecisionAccepted:
		return Submitted
	}

	requests := in.livePlacementRequests()
	for _, pr := range requests {
		if in.HasActiveBooking(pr.Id) {
			return Placed
		}
	}
	if len(requests) > 0 {
		return AwaitingPlacement
	}
	return Pending
}

type temporaryAccommodationDeriver struct{}

func (temporaryAccommodationDeriver) Derive(in Inputs) Status {
	app := in.Application
	latest := in.LatestAssessment

	switch {
	case app.IsWithdrawn:
		return Withdrawn
	case !app.IsSubmitted():
		return InProgress
	case latest != nil && latest.HasUnansweredNote():
		return RequestedFurtherInformation
	case latest != nil && latest.Decision == entity.AssessmentDecisionRejected:
		return Rejected
	}

	for _, b := range in.Bookings {
		if !b.IsCancelled() && b.NonArrival == nil {
			return Placed
		}
	}
	if latest != nil && latest.Decision == entity.AssessmentDecisionAccepted {
		return Pending
	}
	return Submitted
}

// ForKind selects the decision table for the service kind.
func ForKind(kind entity.ServiceKind) Deriver {
	if kind == entity.ServiceKindTemporaryAccommodation {
		return temporaryAccommodationDeriver{}
	}
	return approvedPremisesDeriver{}
}

// DeriveApplicationStatus runs the decision table matching the application's kind.
func DeriveApplicationStatus(in Inputs) Status {
	return ForKind(in.Application.Kind).Derive(in)
}

// LatestAssessment returns the newest assessment that has been neither reallocated nor
// withdrawn, or nil. Ties on CreatedAt are broken by id so the result is deterministic.
func LatestAssessment(assessments []*entity.Assessment) *entity.Assessment {
	candidates := make([]*entity.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if a.ReallocatedAt == nil && !a.IsWithdrawn {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].Id.String() > candidates[j].Id.String()
	})
	return candidates[0]
}
