package constant

import "github.com/google/uuid"

// Reserved cancellation reasons. These rows are seeded by cmd/migrate and are selected by the
// engine itself when a cancellation is cascade-triggered; they are never offered to users.
var (
	CancellationReasonRelatedApplicationWithdrawn          = uuid.MustParse("0a115fa4-6fd0-4b23-8e31-e6d1769c3985")
	CancellationReasonRelatedPlacementApplicationWithdrawn = uuid.MustParse("0e068767-c62e-43b5-866d-f0fb1d02ad83")
	CancellationReasonRelatedPlacementRequestWithdrawn     = uuid.MustParse("990e21a1-d58e-4a55-b88a-4a6b1a6d4c58")
	CancellationReasonBookingAppealed                      = uuid.MustParse("acba3547-ab22-442d-acec-2652e49895f2")
)

// Seeded user-selectable reasons used by the default reference data.
var (
	CancellationReasonPersonNoLongerRequires = uuid.MustParse("1a9a3b0a-6f6c-4d9e-8f43-4f1f0a4b9d11")
	CancellationReasonOther                  = uuid.MustParse("5b8c1e2f-2b1d-4e0b-9f0a-9a41c2d3e412")
	DepartureReasonPlannedMoveOn             = uuid.MustParse("7c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e51")
	DepartureReasonBreachOrRecall            = uuid.MustParse("8d2e3f4a-5b6c-4d7e-9f0a-1b2c3d4e5f62")
	MoveOnCategoryNotApplicable              = uuid.MustParse("9e3f4a5b-6c7d-4e8f-8a1b-2c3d4e5f6a73")
	DestinationProviderProbation             = uuid.MustParse("af4a5b6c-7d8e-4f9a-9b2c-3d4e5f6a7b84")
	NonArrivalReasonRecalled                 = uuid.MustParse("b05b6c7d-8e9f-4a0b-8c3d-4e5f6a7b8c95")
	LostBedReasonMaintenance                 = uuid.MustParse("c16c7d8e-9f0a-4b1c-9d4e-5f6a7b8c9da6")
)

// IsReservedCancellationReason reports whether id may only be chosen by the engine.
func IsReservedCancellationReason(id uuid.UUID) bool {
	switch id {
	case CancellationReasonRelatedApplicationWithdrawn,
		CancellationReasonRelatedPlacementApplicationWithdrawn,
		CancellationReasonRelatedPlacementRequestWithdrawn:
		return true
	}
	return false
}
