package service

import (
	"testing"

	"placement-engine-be/internal/constant"
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedReferenceData_IsIdempotent(t *testing.T) {
	h := newHarness(t)

	inserted, err := h.premises.SeedReferenceData(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	reason, err := h.store.NewUnitOfWork(h.ctx).ReferenceDataRepository().FindById(h.ctx, constant.CancellationReasonRelatedApplicationWithdrawn)
	require.NoError(t, err)
	require.NotNil(t, reason)
	assert.Equal(t, entity.ReferenceCancellationReason, reason.Category)
}

func TestCreatePremises_Validation(t *testing.T) {
	tests := []struct {
		name     string
		premises *entity.Premises
		field    string
	}{
		{
			name:     "unknown kind",
			premises: &entity.Premises{Kind: "hostel", Name: "Hope House"},
			field:    "$.serviceKind",
		},
		{
			name:     "missing name",
			premises: &entity.Premises{Kind: entity.ServiceKindApprovedPremises},
			field:    "$.name",
		},
		{
			name:     "negative turnaround",
			premises: &entity.Premises{Kind: entity.ServiceKindTemporaryAccommodation, Name: "Flat 2", TurnaroundWorkingDays: -1},
			field:    "$.turnaroundWorkingDays",
		},
	}

	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.premises.CreatePremises(h.ctx, tt.premises)
			var validationErr *apperror.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}

	err := h.premises.CreateBed(h.ctx, &entity.Bed{PremisesId: uuid.New(), Name: "Bed 1"})
	assert.True(t, apperror.IsNotFound(err))
}

func TestLostBeds(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindApprovedPremises, 0)

	booking, err := h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(10), jan(20)))
	require.NoError(t, err)

	lostBed := func(start, end int) *CreateLostBedRequest {
		return &CreateLostBedRequest{BedId: f.bed.Id, StartDate: jan(start), EndDate: jan(end), ReasonId: constant.LostBedReasonMaintenance}
	}

	_, err = h.premises.CreateLostBed(h.ctx, lostBed(15, 16))
	conflictErr := requireConflict(t, err)
	assert.Equal(t, "booking", conflictErr.Entity)
	assert.Equal(t, booking.Id, conflictErr.ConflictingId)

	maintenance, err := h.premises.CreateLostBed(h.ctx, lostBed(22, 24))
	require.NoError(t, err)
	assert.Equal(t, f.premises.Id, maintenance.PremisesId)

	_, err = h.premises.CreateLostBed(h.ctx, lostBed(24, 25))
	conflictErr = requireConflict(t, err)
	assert.Equal(t, "lost bed", conflictErr.Entity)

	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(23), jan(26)))
	conflictErr = requireConflict(t, err)
	assert.Equal(t, maintenance.Id, conflictErr.ConflictingId)

	cancelled, err := h.premises.CancelLostBed(h.ctx, maintenance.Id)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	cancelled, err = h.premises.CancelLostBed(h.ctx, maintenance.Id)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)

	_, err = h.bookings.CreateBooking(h.ctx, premisesManager, adHoc(entity.ServiceKindApprovedPremises, f, jan(23), jan(26)))
	require.NoError(t, err)
}

func TestCreateLostBed_Validation(t *testing.T) {
	h := newHarness(t)
	f := h.seedBed(entity.ServiceKindTemporaryAccommodation, 0)

	tests := []struct {
		name  string
		req   *CreateLostBedRequest
		field string
	}{
		{
			name:  "end before start",
			req:   &CreateLostBedRequest{BedId: f.bed.Id, StartDate: jan(12), EndDate: jan(10), ReasonId: constant.LostBedReasonMaintenance},
			field: "$.endDate",
		},
		{
			name:  "reason from another category",
			req:   &CreateLostBedRequest{BedId: f.bed.Id, StartDate: jan(10), EndDate: jan(12), ReasonId: constant.CancellationReasonOther},
			field: "$.reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.premises.CreateLostBed(h.ctx, tt.req)
			var validationErr *apperror.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}

	_, err := h.premises.CreateLostBed(h.ctx, &CreateLostBedRequest{BedId: uuid.New(), StartDate: jan(10), EndDate: jan(12), ReasonId: constant.LostBedReasonMaintenance})
	assert.True(t, apperror.IsNotFound(err))
}
