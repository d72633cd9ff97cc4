package events

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeApplicationSubmitted          Type = "application-submitted"
	TypeApplicationAssessed           Type = "application-assessed"
	TypeApplicationWithdrawn          Type = "application-withdrawn"
	TypeAssessmentInfoRequested       Type = "assessment-info-requested"
	TypeRequestForPlacementCreated    Type = "request-for-placement-created"
	TypePlacementApplicationWithdrawn Type = "placement-application-withdrawn"
	TypeMatchRequestWithdrawn         Type = "match-request-withdrawn"
	TypeBookingMade                   Type = "booking-made"
	TypeBookingConfirmed              Type = "booking-confirmed"
	TypeBookingChanged                Type = "booking-changed"
	TypeBookingCancelled              Type = "booking-cancelled"
	TypePersonArrived                 Type = "person-arrived"
	TypePersonNotArrived              Type = "person-not-arrived"
	TypePersonDeparted                Type = "person-departed"
)

// Details is implemented by every typed event payload.
type Details interface {
	DetailsType() Type
}

type Person struct {
	Crn        string `json:"crn"`
	NomsNumber string `json:"nomsNumber,omitempty"`
	Name       string `json:"name,omitempty"`
}

type StaffMember struct {
	UserId    *uuid.UUID `json:"userId,omitempty"`
	StaffCode string     `json:"staffCode"`
	Name      string     `json:"name,omitempty"`
}

type ApplicationSubmitted struct {
	ApplicationId uuid.UUID   `json:"applicationId"`
	ServiceKind   string      `json:"serviceKind"`
	Person        Person      `json:"personReference"`
	SubmittedAt   time.Time   `json:"submittedAt"`
	SubmittedBy   StaffMember `json:"submittedBy"`
}

func (ApplicationSubmitted) DetailsType() Type { return TypeApplicationSubmitted }

type ApplicationAssessed struct {
	ApplicationId     uuid.UUID   `json:"applicationId"`
	AssessmentId      uuid.UUID   `json:"assessmentId"`
	Person            Person      `json:"personReference"`
	Decision          string      `json:"decision"`
	DecisionRationale string      `json:"decisionRationale,omitempty"`
	AssessedAt        time.Time   `json:"assessedAt"`
	AssessedBy        StaffMember `json:"assessedBy"`
}

func (ApplicationAssessed) DetailsType() Type { return TypeApplicationAssessed }

type ApplicationWithdrawn struct {
	ApplicationId         uuid.UUID   `json:"applicationId"`
	Person                Person      `json:"personReference"`
	WithdrawalReason      string      `json:"withdrawalReason"`
	OtherWithdrawalReason string      `json:"otherWithdrawalReason,omitempty"`
	WithdrawnAt           time.Time   `json:"withdrawnAt"`
	WithdrawnBy           StaffMember `json:"withdrawnBy"`
}

func (ApplicationWithdrawn) DetailsType() Type { return TypeApplicationWithdrawn }

type AssessmentInfoRequested struct {
	AssessmentId  uuid.UUID   `json:"assessmentId"`
	ApplicationId uuid.UUID   `json:"applicationId"`
	NoteId        uuid.UUID   `json:"noteId"`
	Person        Person      `json:"personReference"`
	RequestedAt   time.Time   `json:"requestedAt"`
	RequestedBy   StaffMember `json:"requestedBy"`
}

func (AssessmentInfoRequested) DetailsType() Type { return TypeAssessmentInfoRequested }

type RequestForPlacementCreated struct {
	ApplicationId          uuid.UUID  `json:"applicationId"`
	PlacementRequestId     uuid.UUID  `json:"placementRequestId"`
	PlacementApplicationId *uuid.UUID `json:"placementApplicationId,omitempty"`
	Person                 Person     `json:"personReference"`
	ExpectedArrival        string     `json:"expectedArrival"`
	Duration               int        `json:"duration"`
	CreatedAt              time.Time  `json:"createdAt"`
}

func (RequestForPlacementCreated) DetailsType() Type { return TypeRequestForPlacementCreated }

type DatePeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type PlacementApplicationWithdrawn struct {
	PlacementApplicationId uuid.UUID    `json:"placementApplicationId"`
	ApplicationId          uuid.UUID    `json:"applicationId"`
	Person                 Person       `json:"personReference"`
	Decision               string       `json:"decision"`
	WithdrawalReason       string       `json:"withdrawalReason"`
	PlacementDates         []DatePeriod `json:"placementDates"`
	WithdrawnAt            time.Time    `json:"withdrawnAt"`
	WithdrawnBy            StaffMember  `json:"withdrawnBy"`
}

func (PlacementApplicationWithdrawn) DetailsType() Type { return TypePlacementApplicationWithdrawn }

type MatchRequestWithdrawn struct {
	PlacementRequestId uuid.UUID   `json:"matchRequestId"`
	ApplicationId      uuid.UUID   `json:"applicationId"`
	Person             Person      `json:"personReference"`
	WithdrawalReason   string      `json:"withdrawalReason"`
	RequestedDates     DatePeriod  `json:"requestedDates"`
	WithdrawnAt        time.Time   `json:"withdrawnAt"`
	WithdrawnBy        StaffMember `json:"withdrawnBy"`
}

func (MatchRequestWithdrawn) DetailsType() Type { return TypeMatchRequestWithdrawn }

type BookingMade struct {
	BookingId     uuid.UUID   `json:"bookingId"`
	ApplicationId *uuid.UUID  `json:"applicationId,omitempty"`
	ServiceKind   string      `json:"serviceKind"`
	Person        Person      `json:"personReference"`
	PremisesId    uuid.UUID   `json:"premisesId"`
	BedId         *uuid.UUID  `json:"bedId,omitempty"`
	ArrivalOn     string      `json:"arrivalOn"`
	DepartureOn   string      `json:"departureOn"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	BookedBy      StaffMember `json:"bookedBy"`
}

func (BookingMade) DetailsType() Type { return TypeBookingMade }

type BookingConfirmed struct {
	BookingId   uuid.UUID   `json:"bookingId"`
	Person      Person      `json:"personReference"`
	ConfirmedAt time.Time   `json:"confirmedAt"`
	ConfirmedBy StaffMember `json:"confirmedBy"`
}

func (BookingConfirmed) DetailsType() Type { return TypeBookingConfirmed }

type BookingChanged struct {
	BookingId           uuid.UUID   `json:"bookingId"`
	ApplicationId       *uuid.UUID  `json:"applicationId,omitempty"`
	Person              Person      `json:"personReference"`
	ArrivalOn           string      `json:"arrivalOn"`
	DepartureOn         string      `json:"departureOn"`
	PreviousArrivalOn   string      `json:"previousArrivalOn,omitempty"`
	PreviousDepartureOn string      `json:"previousDepartureOn,omitempty"`
	ChangedAt           time.Time   `json:"changedAt"`
	ChangedBy           StaffMember `json:"changedBy"`
}

func (BookingChanged) DetailsType() Type { return TypeBookingChanged }

type BookingCancelled struct {
	BookingId            uuid.UUID   `json:"bookingId"`
	ApplicationId        *uuid.UUID  `json:"applicationId,omitempty"`
	Person               Person      `json:"personReference"`
	PremisesId           uuid.UUID   `json:"premisesId"`
	CancellationReasonId uuid.UUID   `json:"cancellationReasonId"`
	CancellationReason   string      `json:"cancellationReason"`
	CancelledAt          string      `json:"cancelledAt"`
	CancellationRecorded time.Time   `json:"cancellationRecordedAt"`
	CancelledBy          StaffMember `json:"cancelledBy"`
	TriggeringEntityType string      `json:"triggeringEntityType"`
}

func (BookingCancelled) DetailsType() Type { return TypeBookingCancelled }

type PersonArrived struct {
	BookingId           uuid.UUID   `json:"bookingId"`
	ApplicationId       *uuid.UUID  `json:"applicationId,omitempty"`
	Person              Person      `json:"personReference"`
	PremisesId          uuid.UUID   `json:"premisesId"`
	ArrivedAt           string      `json:"arrivedAt"`
	ExpectedDepartureOn string      `json:"expectedDepartureOn"`
	KeyWorkerStaffCode  string      `json:"keyWorkerStaffCode,omitempty"`
	Notes               string      `json:"notes,omitempty"`
	RecordedBy          StaffMember `json:"recordedBy"`
}

func (PersonArrived) DetailsType() Type { return TypePersonArrived }

type PersonNotArrived struct {
	BookingId         uuid.UUID   `json:"bookingId"`
	ApplicationId     *uuid.UUID  `json:"applicationId,omitempty"`
	Person            Person      `json:"personReference"`
	ExpectedArrivalOn string      `json:"expectedArrivalOn"`
	ReasonId          uuid.UUID   `json:"reasonId"`
	Reason            string      `json:"reason"`
	Notes             string      `json:"notes,omitempty"`
	RecordedBy        StaffMember `json:"recordedBy"`
}

func (PersonNotArrived) DetailsType() Type { return TypePersonNotArrived }

type PersonDeparted struct {
	BookingId             uuid.UUID   `json:"bookingId"`
	ApplicationId         *uuid.UUID  `json:"applicationId,omitempty"`
	Person                Person      `json:"personReference"`
	PremisesId            uuid.UUID   `json:"premisesId"`
	DepartedAt            time.Time   `json:"departedAt"`
	ReasonId              uuid.UUID   `json:"reasonId"`
	Reason                string      `json:"reason"`
	MoveOnCategoryId      *uuid.UUID  `json:"moveOnCategoryId,omitempty"`
	DestinationProviderId *uuid.UUID  `json:"destinationProviderId,omitempty"`
	RecordedBy            StaffMember `json:"recordedBy"`
}

func (PersonDeparted) DetailsType() Type { return TypePersonDeparted }
