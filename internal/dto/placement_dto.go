package dto

import (
	"time"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type CreateApplicationRequest struct {
	Kind                   entity.ServiceKind `json:"serviceKind" validate:"required,oneof=approved-premises temporary-accommodation"`
	Crn                    string             `json:"crn" validate:"required"`
	ApType                 string             `json:"apType"`
	IsWomensApplication    bool               `json:"isWomensApplication"`
	IsEmergencyApplication bool               `json:"isEmergencyApplication"`
	ArrivalDate            *time.Time         `json:"arrivalDate"`
	ProbationRegion        string             `json:"probationRegion"`
}

type PlacementRequirements struct {
	Postcode          string   `json:"postcode"`
	RadiusMiles       int      `json:"radiusMiles" validate:"gte=0"`
	ApType            string   `json:"apType"`
	EssentialCriteria []string `json:"essentialCriteria"`
	DesirableCriteria []string `json:"desirableCriteria"`
}

func (r PlacementRequirements) ToEntity() entity.PlacementRequirements {
	return entity.PlacementRequirements{
		Postcode:          r.Postcode,
		RadiusMiles:       r.RadiusMiles,
		ApType:            r.ApType,
		EssentialCriteria: r.EssentialCriteria,
		DesirableCriteria: r.DesirableCriteria,
	}
}

// AcceptAssessmentRequest carries the requirements for matching. When ExpectedArrival is set an
// initial placement request is created for those dates.
type AcceptAssessmentRequest struct {
	Requirements    PlacementRequirements `json:"requirements"`
	ExpectedArrival *time.Time            `json:"expectedArrival"`
	Duration        int                   `json:"duration" validate:"gte=0"`
	IsParole        bool                  `json:"isParole"`
	Notes           string                `json:"notes"`
}

type PlacementDateRequest struct {
	ExpectedArrival time.Time `json:"expectedArrival" validate:"required"`
	Duration        int       `json:"duration" validate:"gt=0"`
}

type SubmitPlacementApplicationRequest struct {
	ApplicationId uuid.UUID              `json:"applicationId" validate:"required"`
	PlacementType entity.PlacementType   `json:"placementType" validate:"required,oneof=rotl release_following_decision additional_placement"`
	Dates         []PlacementDateRequest `json:"placementDates" validate:"required,min=1,dive"`
}

type PlacementApplicationDecisionRequest struct {
	Decision entity.PlacementApplicationDecision `json:"decision" validate:"required,oneof=accepted rejected"`
}
