package entity

import (
	"time"

	"github.com/google/uuid"
)

type TriggerSource string

const (
	TriggerSourceUser   TriggerSource = "user"
	TriggerSourceSystem TriggerSource = "system"
)

// DomainEvent is the stored audit-of-record for a transition. It is inserted once and never updated.
type DomainEvent struct {
	Id                 uuid.UUID
	Type               string
	ApplicationId      *uuid.UUID
	AssessmentId       *uuid.UUID
	BookingId          *uuid.UUID
	PlacementRequestId *uuid.UUID
	Crn                string
	OccurredAt         time.Time
	CreatedAt          time.Time
	SchemaVersion      int
	Data               []byte
	TriggerSource      TriggerSource
	TriggeredByUserId  *uuid.UUID
}
