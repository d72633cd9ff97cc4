package model

import (
	"time"

	"github.com/google/uuid"
)

type Premises struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind                  string    `gorm:"type:varchar(40);not null"`
	Name                  string    `gorm:"type:varchar(255);not null"`
	EmailAddress          string    `gorm:"type:varchar(255)"`
	TurnaroundWorkingDays int       `gorm:"not null;default:0"`
}

func (Premises) TableName() string {
	return "premises"
}

type Bed struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PremisesId uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	RoomName   string    `gorm:"type:varchar(100)"`
}

func (Bed) TableName() string {
	return "beds"
}

type LostBed struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PremisesId  uuid.UUID `gorm:"type:uuid;not null;index"`
	BedId       uuid.UUID `gorm:"type:uuid;not null;index:idx_lost_beds_bed_window,priority:1"`
	StartDate   time.Time `gorm:"type:date;not null;index:idx_lost_beds_bed_window,priority:2"`
	EndDate     time.Time `gorm:"type:date;not null"`
	ReasonId    uuid.UUID `gorm:"type:uuid;not null"`
	Notes       string    `gorm:"type:text"`
	IsCancelled bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (LostBed) TableName() string {
	return "lost_beds"
}

type ReferenceData struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Category     string    `gorm:"type:varchar(40);not null;index"`
	Name         string    `gorm:"type:varchar(255);not null"`
	ServiceScope string    `gorm:"type:varchar(40)"`
	IsActive     bool      `gorm:"not null;default:true"`
}

func (ReferenceData) TableName() string {
	return "reference_data"
}
