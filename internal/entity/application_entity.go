// FILE: internal/entity/application_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ServiceKind discriminates the approved premises (CAS1) and temporary accommodation (CAS3)
// variants of applications, premises and bookings.
type ServiceKind string

const (
	ServiceKindApprovedPremises       ServiceKind = "approved-premises"
	ServiceKindTemporaryAccommodation ServiceKind = "temporary-accommodation"
)

func (k ServiceKind) Valid() bool {
	return k == ServiceKindApprovedPremises || k == ServiceKindTemporaryAccommodation
}

type WithdrawalReason string

const (
	WithdrawalReasonDuplicateApplication         WithdrawalReason = "duplicate_application"
	WithdrawalReasonDeath                        WithdrawalReason = "death"
	WithdrawalReasonOtherAccommodationIdentified WithdrawalReason = "other_accommodation_identified"
	WithdrawalReasonChangeInCircumstances        WithdrawalReason = "change_in_circumstances"
	WithdrawalReasonErrorInApplication           WithdrawalReason = "error_in_application"
	WithdrawalReasonRelatedApplicationWithdrawn  WithdrawalReason = "related_application_withdrawn"
	WithdrawalReasonRelatedPlacementAppWithdrawn WithdrawalReason = "related_placement_application_withdrawn"
	WithdrawalReasonOther                        WithdrawalReason = "other"
)

var userWithdrawalReasons = map[WithdrawalReason]struct{}{
	WithdrawalReasonDuplicateApplication:         {},
	WithdrawalReasonDeath:                        {},
	WithdrawalReasonOtherAccommodationIdentified: {},
	WithdrawalReasonChangeInCircumstances:        {},
	WithdrawalReasonErrorInApplication:           {},
	WithdrawalReasonOther:                        {},
}

// IsUserSelectable reports whether a person may choose r when withdrawing directly.
func (r WithdrawalReason) IsUserSelectable() bool {
	_, ok := userWithdrawalReasons[r]
	return ok
}

type Application struct {
	Id                    uuid.UUID
	Kind                  ServiceKind
	Crn                   string
	CreatedByUserId       uuid.UUID
	CreatedAt             time.Time
	SubmittedAt           *time.Time
	IsWithdrawn           bool
	WithdrawalReason      WithdrawalReason
	OtherWithdrawalReason string
	IsInapplicable        bool

	// Exactly one of these is set, matching Kind.
	ApprovedPremises       *ApprovedPremisesDetails
	TemporaryAccommodation *TemporaryAccommodationDetails
}

type ApprovedPremisesDetails struct {
	ApType                 string
	IsWomensApplication    bool
	IsEmergencyApplication bool
	ArrivalDate            *time.Time
}

type TemporaryAccommodationDetails struct {
	ProbationRegion           string
	DutyToReferSubmissionDate *time.Time
}

func (a *Application) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// OfflineApplication is the shadow record an ad-hoc booking links to when the person has no
// submitted online application.
type OfflineApplication struct {
	Id          uuid.UUID
	Kind        ServiceKind
	Crn         string
	EventNumber string
	CreatedAt   time.Time
}
