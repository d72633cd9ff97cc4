package apperror

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorsAccumulates(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Err())

	v.Add("$.departureDate", "beforeBookingArrivalDate")
	v.Add("$.reason", "empty")
	v.Add("$.reason", "doesNotExist")

	require.True(t, v.HasErrors())
	err := v.Err()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "empty", ve.Fields["$.reason"])
	assert.Equal(t, "beforeBookingArrivalDate", ve.Fields["$.departureDate"])
}

func TestValidateStruct(t *testing.T) {
	type command struct {
		Crn    string `validate:"required"`
		Nights int    `validate:"gte=0"`
	}

	v := NewValidationErrors()
	require.NoError(t, v.ValidateStruct(command{Nights: -1}))

	var ve *ValidationError
	require.ErrorAs(t, v.Err(), &ve)
	assert.Equal(t, "empty", ve.Fields["$.crn"])
	assert.Equal(t, "isInvalid", ve.Fields["$.nights"])
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("booking", id), IsNotFound},
		{"unauthorised", Unauthorised("not the creator"), IsUnauthorised},
		{"conflict", Conflict("booking", id, "already cancelled"), IsConflict},
		{"general", GeneralValidation("already submitted"), IsGeneralValidation},
		{"fatal", Fatal(fmt.Errorf("staff api down"), "build event"), IsFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
		})
	}
}
