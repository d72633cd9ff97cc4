package dto

import (
	"time"

	"placement-engine-be/internal/entity"

	"github.com/google/uuid"
)

type CreatePlacementBookingRequest struct {
	PlacementRequestId uuid.UUID `json:"placementRequestId" validate:"required"`
	BedId              uuid.UUID `json:"bedId" validate:"required"`
	ArrivalDate        time.Time `json:"arrivalDate" validate:"required"`
	DepartureDate      time.Time `json:"departureDate" validate:"required"`
}

type CreateBookingRequest struct {
	Kind          entity.ServiceKind `json:"serviceKind" validate:"required,oneof=approved-premises temporary-accommodation"`
	Crn           string             `json:"crn" validate:"required"`
	PremisesId    uuid.UUID          `json:"premisesId" validate:"required"`
	BedId         uuid.UUID          `json:"bedId" validate:"required"`
	ArrivalDate   time.Time          `json:"arrivalDate" validate:"required"`
	DepartureDate time.Time          `json:"departureDate" validate:"required"`
	EventNumber   string             `json:"eventNumber"`
}

type ConfirmationRequest struct {
	Notes string `json:"notes"`
}

type ArrivalRequest struct {
	ArrivalDate           time.Time `json:"arrivalDate" validate:"required"`
	ExpectedDepartureDate time.Time `json:"expectedDepartureDate" validate:"required"`
	KeyWorkerStaffCode    string    `json:"keyWorkerStaffCode"`
	Notes                 string    `json:"notes"`
}

type NonArrivalRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	ReasonId uuid.UUID `json:"reasonId" validate:"required"`
	Notes    string    `json:"notes"`
}

type DepartureRequest struct {
	DateTime              time.Time  `json:"dateTime" validate:"required"`
	ReasonId              uuid.UUID  `json:"reasonId" validate:"required"`
	MoveOnCategoryId      *uuid.UUID `json:"moveOnCategoryId"`
	DestinationProviderId *uuid.UUID `json:"destinationProviderId"`
	Notes                 string     `json:"notes"`
}

type ExtensionRequest struct {
	NewDepartureDate time.Time `json:"newDepartureDate" validate:"required"`
	Notes            string    `json:"notes"`
}

// DateChangeRequest changes either or both dates. Nil keeps the current value.
type DateChangeRequest struct {
	NewArrivalDate   *time.Time `json:"newArrivalDate"`
	NewDepartureDate *time.Time `json:"newDepartureDate"`
}

type TurnaroundRequest struct {
	WorkingDays int `json:"workingDays" validate:"gte=0"`
}

type CancelBookingRequest struct {
	Date        time.Time  `json:"date"`
	ReasonId    *uuid.UUID `json:"reasonId"`
	OtherReason string     `json:"otherReason"`
	Notes       string     `json:"notes"`
}

type BedMoveRequest struct {
	NewBedId uuid.UUID `json:"newBedId" validate:"required"`
	Notes    string    `json:"notes"`
}
