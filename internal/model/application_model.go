package model

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	Id                    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Kind                  string     `gorm:"type:varchar(40);not null;index:idx_applications_crn_kind,priority:2"`
	Crn                   string     `gorm:"type:varchar(20);not null;index:idx_applications_crn_kind,priority:1"`
	CreatedByUserId       uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt             time.Time  `gorm:"not null"`
	SubmittedAt           *time.Time `gorm:"index"`
	IsWithdrawn           bool       `gorm:"not null;default:false"`
	WithdrawalReason      string     `gorm:"type:varchar(60)"`
	OtherWithdrawalReason string     `gorm:"type:text"`
	IsInapplicable        bool       `gorm:"not null;default:false"`

	// approved-premises
	ApType                 string `gorm:"type:varchar(40)"`
	IsWomensApplication    bool
	IsEmergencyApplication bool
	ArrivalDate            *time.Time `gorm:"type:date"`

	// temporary-accommodation
	ProbationRegion           string     `gorm:"type:varchar(100)"`
	DutyToReferSubmissionDate *time.Time `gorm:"type:date"`
}

func (Application) TableName() string {
	return "applications"
}

type OfflineApplication struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind        string    `gorm:"type:varchar(40);not null"`
	Crn         string    `gorm:"type:varchar(20);not null;index"`
	EventNumber string    `gorm:"type:varchar(20)"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (OfflineApplication) TableName() string {
	return "offline_applications"
}

type Assessment struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ApplicationId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AllocatedToUserId  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"not null"`
	SubmittedAt        *time.Time
	Decision           string `gorm:"type:varchar(20)"`
	RejectionRationale string `gorm:"type:text"`
	ReallocatedAt      *time.Time
	IsWithdrawn        bool `gorm:"not null;default:false"`

	ClarificationNotes []ClarificationNote `gorm:"foreignKey:AssessmentId"`
}

func (Assessment) TableName() string {
	return "assessments"
}

type ClarificationNote struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AssessmentId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedByUserId    uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt          time.Time  `gorm:"not null"`
	Query              string     `gorm:"type:text;not null"`
	Response           string     `gorm:"type:text"`
	ResponseReceivedOn *time.Time `gorm:"type:date"`
}

func (ClarificationNote) TableName() string {
	return "assessment_clarification_notes"
}
