package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PlacementApplication struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ApplicationId     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByUserId   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt         time.Time `gorm:"not null"`
	SubmittedAt       *time.Time
	AllocatedToUserId *uuid.UUID `gorm:"type:uuid"`
	AllocatedAt       *time.Time
	ReallocatedAt     *time.Time
	Decision          string `gorm:"type:varchar(30)"`
	DecisionMadeAt    *time.Time
	WithdrawalReason  string `gorm:"type:varchar(60)"`
	PlacementType     string `gorm:"type:varchar(40)"`

	Dates []PlacementDate `gorm:"foreignKey:PlacementApplicationId"`
}

func (PlacementApplication) TableName() string {
	return "placement_applications"
}

type PlacementDate struct {
	Id                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	PlacementApplicationId uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpectedArrival        time.Time `gorm:"type:date;not null"`
	Duration               int       `gorm:"not null"`
}

func (PlacementDate) TableName() string {
	return "placement_dates"
}

type PlacementRequest struct {
	Id                     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApplicationId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssessmentId           uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlacementApplicationId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt              time.Time  `gorm:"not null"`
	ExpectedArrival        time.Time  `gorm:"type:date;not null"`
	Duration               int        `gorm:"not null"`
	Postcode               string     `gorm:"type:varchar(10)"`
	RadiusMiles            int
	ApType                 string         `gorm:"type:varchar(40)"`
	EssentialCriteria      datatypes.JSON `gorm:"type:jsonb"`
	DesirableCriteria      datatypes.JSON `gorm:"type:jsonb"`
	AllocatedToUserId      *uuid.UUID     `gorm:"type:uuid"`
	ReallocatedAt          *time.Time
	BookingId              *uuid.UUID `gorm:"type:uuid"`
	IsWithdrawn            bool       `gorm:"not null;default:false"`
	WithdrawalReason       string     `gorm:"type:varchar(60)"`
	IsParole               bool
	Notes                  string `gorm:"type:text"`
}

func (PlacementRequest) TableName() string {
	return "placement_requests"
}
