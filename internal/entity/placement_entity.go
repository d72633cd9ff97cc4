// FILE: internal/entity/placement_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type PlacementApplicationDecision string

const (
	PlacementApplicationDecisionNone                 PlacementApplicationDecision = ""
	PlacementApplicationDecisionAccepted             PlacementApplicationDecision = "accepted"
	PlacementApplicationDecisionRejected             PlacementApplicationDecision = "rejected"
	PlacementApplicationDecisionWithdrawn            PlacementApplicationDecision = "withdrawn"
	PlacementApplicationDecisionWithdrawnByRequester PlacementApplicationDecision = "withdrawnByRequester"
)

func (d PlacementApplicationDecision) IsWithdrawn() bool {
	return d == PlacementApplicationDecisionWithdrawn || d == PlacementApplicationDecisionWithdrawnByRequester
}

type PlacementType string

const (
	PlacementTypeRotl                     PlacementType = "rotl"
	PlacementTypeReleaseFollowingDecision PlacementType = "release_following_decision"
	PlacementTypeAdditionalPlacement      PlacementType = "additional_placement"
)

type PlacementApplication struct {
	Id                uuid.UUID
	ApplicationId     uuid.UUID
	CreatedByUserId   uuid.UUID
	CreatedAt         time.Time
	SubmittedAt       *time.Time
	AllocatedToUserId *uuid.UUID
	AllocatedAt       *time.Time
	ReallocatedAt     *time.Time
	Decision          PlacementApplicationDecision
	DecisionMadeAt    *time.Time
	WithdrawalReason  WithdrawalReason
	PlacementType     PlacementType
	Dates             []PlacementDate
}

type PlacementDate struct {
	Id                     uuid.UUID
	PlacementApplicationId uuid.UUID
	ExpectedArrival        time.Time
	Duration               int
}

func (p *PlacementApplication) HasDecision() bool {
	return p.Decision != PlacementApplicationDecisionNone
}

type PlacementRequirements struct {
	Postcode          string
	RadiusMiles       int
	ApType            string
	EssentialCriteria []string
	DesirableCriteria []string
}

type PlacementRequest struct {
	Id                     uuid.UUID
	ApplicationId          uuid.UUID
	AssessmentId           uuid.UUID
	PlacementApplicationId *uuid.UUID
	CreatedAt              time.Time
	ExpectedArrival        time.Time
	Duration               int
	Requirements           PlacementRequirements
	AllocatedToUserId      *uuid.UUID
	ReallocatedAt          *time.Time
	BookingId              *uuid.UUID
	IsWithdrawn            bool
	WithdrawalReason       WithdrawalReason
	IsParole               bool
	Notes                  string
}

// ExpectedDeparture is the departure implied by ExpectedArrival and Duration (in days).
func (p *PlacementRequest) ExpectedDeparture() time.Time {
	return p.ExpectedArrival.AddDate(0, 0, p.Duration)
}
