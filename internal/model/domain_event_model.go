package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DomainEvent rows are append-only.
type DomainEvent struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Type               string         `gorm:"type:varchar(60);not null;index"`
	ApplicationId      *uuid.UUID     `gorm:"type:uuid;index"`
	AssessmentId       *uuid.UUID     `gorm:"type:uuid"`
	BookingId          *uuid.UUID     `gorm:"type:uuid;index"`
	PlacementRequestId *uuid.UUID     `gorm:"type:uuid"`
	Crn                string         `gorm:"type:varchar(20);not null;index"`
	OccurredAt         time.Time      `gorm:"not null"`
	CreatedAt          time.Time      `gorm:"not null"`
	SchemaVersion      int            `gorm:"not null;default:1"`
	Data               datatypes.JSON `gorm:"type:jsonb;not null"`
	TriggerSource      string         `gorm:"type:varchar(10);not null"`
	TriggeredByUserId  *uuid.UUID     `gorm:"type:uuid"`
}

func (DomainEvent) TableName() string {
	return "domain_events"
}
