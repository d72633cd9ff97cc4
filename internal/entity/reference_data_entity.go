package entity

import "github.com/google/uuid"

type ReferenceCategory string

const (
	ReferenceCancellationReason  ReferenceCategory = "cancellation-reason"
	ReferenceDepartureReason     ReferenceCategory = "departure-reason"
	ReferenceMoveOnCategory      ReferenceCategory = "move-on-category"
	ReferenceDestinationProvider ReferenceCategory = "destination-provider"
	ReferenceNonArrivalReason    ReferenceCategory = "non-arrival-reason"
	ReferenceLostBedReason       ReferenceCategory = "lost-bed-reason"
)

// ReferenceData is a selectable reason or category. An empty ServiceScope applies to every service.
type ReferenceData struct {
	Id           uuid.UUID
	Category     ReferenceCategory
	Name         string
	ServiceScope ServiceKind
	IsActive     bool
}

func (r *ReferenceData) AppliesTo(kind ServiceKind) bool {
	return r.ServiceScope == "" || r.ServiceScope == kind
}
