package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDetails_CurrentVersion(t *testing.T) {
	id := uuid.New()
	raw, err := json.Marshal(BookingMade{BookingId: id, ArrivalOn: "2024-01-20", DepartureOn: "2024-01-27"})
	require.NoError(t, err)

	details, err := DecodeDetails(TypeBookingMade, CurrentSchemaVersion, raw)
	require.NoError(t, err)

	made, ok := details.(BookingMade)
	require.True(t, ok, "expected value payload, got %T", details)
	assert.Equal(t, id, made.BookingId)
	assert.Equal(t, "2024-01-27", made.DepartureOn)
}

func TestDecodeDetails_LegacyAlias(t *testing.T) {
	raw := json.RawMessage(`{"bookingId":"` + uuid.NewString() + `","arrivalOn":"2024-02-01","departureOn":"2024-02-10"}`)

	details, err := DecodeDetails("booking-date-changed", CurrentSchemaVersion, raw)
	require.NoError(t, err)
	assert.Equal(t, TypeBookingChanged, details.DetailsType())
	assert.Equal(t, "2024-02-01", details.(BookingChanged).ArrivalOn)
}

func TestDecodeDetails_UpcastsBookingCancelledV1(t *testing.T) {
	raw := json.RawMessage(`{"bookingId":"` + uuid.NewString() + `","cancelledBy":"N54A123","cancellationReason":"Other"}`)

	details, err := DecodeDetails(TypeBookingCancelled, 1, raw)
	require.NoError(t, err)

	cancelled := details.(BookingCancelled)
	assert.Equal(t, "N54A123", cancelled.CancelledBy.StaffCode)
	assert.Equal(t, "booking", cancelled.TriggeringEntityType)
	assert.Equal(t, "Other", cancelled.CancellationReason)
}

func TestDecodeDetails_V1KeepsExplicitTriggeringEntity(t *testing.T) {
	raw := json.RawMessage(`{"cancelledBy":"ABC","triggeringEntityType":"application"}`)

	details, err := DecodeDetails(TypeBookingCancelled, 1, raw)
	require.NoError(t, err)
	assert.Equal(t, "application", details.(BookingCancelled).TriggeringEntityType)
}

func TestDecodeDetails_UnknownType(t *testing.T) {
	_, err := DecodeDetails("not-a-thing", CurrentSchemaVersion, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name     string
		stored   Type
		expected Type
		want     bool
	}{
		{"same type", TypeBookingMade, TypeBookingMade, true},
		{"different type", TypeBookingMade, TypeBookingCancelled, false},
		{"legacy alias matches new name", "booking-date-changed", TypeBookingChanged, true},
		{"new name matches legacy request", TypeBookingChanged, "booking-date-changed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accepts(tt.stored, tt.expected))
		})
	}
}

func TestEnvelope_WireRoundTripKeepsId(t *testing.T) {
	details := PersonArrived{BookingId: uuid.New(), ArrivedAt: "2024-01-20", Person: Person{Crn: "X320741"}}
	env := NewEnvelope(details, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))

	data, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, env.Id, decoded.EventId())
	assert.Equal(t, "person-arrived", decoded.EventType())
	assert.Equal(t, details, decoded.EventDetails)
}
