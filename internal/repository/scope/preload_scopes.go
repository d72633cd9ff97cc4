package scope

import "gorm.io/gorm"

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// PreloadBookingRecords loads every child record of the booking aggregate.
func PreloadBookingRecords(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Arrival").
		Preload("Departure").
		Preload("NonArrival").
		Preload("Cancellation").
		Preload("Confirmation").
		Preload("Extensions", OrderByCreatedAsc).
		Preload("DateChanges", OrderByCreatedAsc).
		Preload("Turnarounds", OrderByCreatedAsc).
		Preload("BedMoves", OrderByCreatedAsc)
}

func PreloadClarificationNotes(db *gorm.DB) *gorm.DB {
	return db.Preload("ClarificationNotes", OrderByCreatedAsc)
}

func PreloadPlacementDates(db *gorm.DB) *gorm.DB {
	return db.Preload("Dates", func(db *gorm.DB) *gorm.DB {
		return db.Order("expected_arrival ASC")
	})
}
