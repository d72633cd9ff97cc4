package entity

import (
	"time"

	"github.com/google/uuid"
)

type Premises struct {
	Id                    uuid.UUID
	Kind                  ServiceKind
	Name                  string
	EmailAddress          string
	TurnaroundWorkingDays int
}

type Bed struct {
	Id         uuid.UUID
	PremisesId uuid.UUID
	Name       string
	RoomName   string
}

// LostBed takes a bed out of service from StartDate to EndDate inclusive.
type LostBed struct {
	Id          uuid.UUID
	PremisesId  uuid.UUID
	BedId       uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	ReasonId    uuid.UUID
	Notes       string
	IsCancelled bool
	CreatedAt   time.Time
}
