package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByApplicationID struct {
	ApplicationID uuid.UUID
}

func (s ByApplicationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("application_id = ?", s.ApplicationID)
}

type ByCrnAndKind struct {
	Crn  string
	Kind string
}

func (s ByCrnAndKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("crn = ? AND kind = ?", s.Crn, s.Kind)
}

type Submitted struct{}

func (s Submitted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("submitted_at IS NOT NULL")
}

type ByBedID struct {
	BedID uuid.UUID
}

func (s ByBedID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("bed_id = ?", s.BedID)
}

// ArrivingBefore keeps bookings whose arrival date is strictly before Date.
type ArrivingBefore struct {
	Date time.Time
}

func (s ArrivingBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("arrival_date < ?", s.Date)
}

// ActiveBooking excludes bookings that no longer hold their bed.
type ActiveBooking struct{}

func (s ActiveBooking) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status NOT IN ?", []string{"cancelled", "not-arrived"})
}

// LostBedOverlapping matches non-cancelled lost beds whose inclusive window meets [From, To].
type LostBedOverlapping struct {
	From time.Time
	To   time.Time
}

func (s LostBedOverlapping) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_cancelled = ? AND start_date <= ? AND end_date >= ?", false, s.To, s.From)
}

type ByPlacementApplicationID struct {
	PlacementApplicationID uuid.UUID
}

func (s ByPlacementApplicationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("placement_application_id = ?", s.PlacementApplicationID)
}

type ByPlacementRequestID struct {
	PlacementRequestID uuid.UUID
}

func (s ByPlacementRequestID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("placement_request_id = ?", s.PlacementRequestID)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}
