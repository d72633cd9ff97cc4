package model

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	Id                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind                  string     `gorm:"type:varchar(40);not null"`
	Crn                   string     `gorm:"type:varchar(20);not null;index"`
	NomsNumber            string     `gorm:"type:varchar(20)"`
	PremisesId            uuid.UUID  `gorm:"type:uuid;not null;index"`
	BedId                 *uuid.UUID `gorm:"type:uuid;index:idx_bookings_bed_arrival,priority:1"`
	ApplicationId         *uuid.UUID `gorm:"type:uuid;index"`
	OfflineApplicationId  *uuid.UUID `gorm:"type:uuid"`
	PlacementRequestId    *uuid.UUID `gorm:"type:uuid;index"`
	ArrivalDate           time.Time  `gorm:"type:date;not null;index:idx_bookings_bed_arrival,priority:2"`
	DepartureDate         time.Time  `gorm:"type:date;not null"`
	OriginalArrivalDate   time.Time  `gorm:"type:date;not null"`
	OriginalDepartureDate time.Time  `gorm:"type:date;not null"`
	Status                string     `gorm:"type:varchar(20);not null"`
	CreatedAt             time.Time  `gorm:"not null"`
	Version               int        `gorm:"not null;default:1"`

	Arrival      *Arrival      `gorm:"foreignKey:BookingId"`
	Departure    *Departure    `gorm:"foreignKey:BookingId"`
	NonArrival   *NonArrival   `gorm:"foreignKey:BookingId"`
	Cancellation *Cancellation `gorm:"foreignKey:BookingId"`
	Confirmation *Confirmation `gorm:"foreignKey:BookingId"`
	Extensions   []Extension   `gorm:"foreignKey:BookingId"`
	DateChanges  []DateChange  `gorm:"foreignKey:BookingId"`
	Turnarounds  []Turnaround  `gorm:"foreignKey:BookingId"`
	BedMoves     []BedMove     `gorm:"foreignKey:BookingId"`
}

func (Booking) TableName() string {
	return "bookings"
}

type Arrival struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ArrivalDate           time.Time `gorm:"type:date;not null"`
	ExpectedDepartureDate time.Time `gorm:"type:date;not null"`
	KeyWorkerStaffCode    string    `gorm:"type:varchar(20)"`
	Notes                 string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null"`
}

func (Arrival) TableName() string {
	return "arrivals"
}

type Departure struct {
	Id                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingId             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	DateTime              time.Time  `gorm:"not null"`
	ReasonId              uuid.UUID  `gorm:"type:uuid;not null"`
	MoveOnCategoryId      *uuid.UUID `gorm:"type:uuid"`
	DestinationProviderId *uuid.UUID `gorm:"type:uuid"`
	Notes                 string     `gorm:"type:text"`
	CreatedAt             time.Time  `gorm:"not null"`
}

func (Departure) TableName() string {
	return "departures"
}

type NonArrival struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Date      time.Time `gorm:"type:date;not null"`
	ReasonId  uuid.UUID `gorm:"type:uuid;not null"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

func (NonArrival) TableName() string {
	return "non_arrivals"
}

type Cancellation struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Date        time.Time `gorm:"type:date;not null"`
	ReasonId    uuid.UUID `gorm:"type:uuid;not null"`
	OtherReason string    `gorm:"type:text"`
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Cancellation) TableName() string {
	return "booking_cancellations"
}

type Confirmation struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DateTime  time.Time `gorm:"not null"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Confirmation) TableName() string {
	return "confirmations"
}

type Extension struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId             uuid.UUID `gorm:"type:uuid;not null;index"`
	PreviousDepartureDate time.Time `gorm:"type:date;not null"`
	NewDepartureDate      time.Time `gorm:"type:date;not null"`
	Notes                 string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null"`
}

func (Extension) TableName() string {
	return "extensions"
}

type DateChange struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId             uuid.UUID `gorm:"type:uuid;not null;index"`
	PreviousArrivalDate   time.Time `gorm:"type:date;not null"`
	PreviousDepartureDate time.Time `gorm:"type:date;not null"`
	NewArrivalDate        time.Time `gorm:"type:date;not null"`
	NewDepartureDate      time.Time `gorm:"type:date;not null"`
	ChangedByUserId       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt             time.Time `gorm:"not null"`
}

func (DateChange) TableName() string {
	return "date_changes"
}

type Turnaround struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingId       uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkingDayCount int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (Turnaround) TableName() string {
	return "turnarounds"
}

type BedMove struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PreviousBedId   *uuid.UUID `gorm:"type:uuid"`
	NewBedId        uuid.UUID  `gorm:"type:uuid;not null"`
	Notes           string     `gorm:"type:text"`
	CreatedByUserId uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt       time.Time  `gorm:"not null"`
}

func (BedMove) TableName() string {
	return "bed_moves"
}
