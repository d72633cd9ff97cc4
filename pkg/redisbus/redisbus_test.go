package redisbus

import (
	"encoding/json"
	"testing"
	"time"

	"placement-engine-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Frame(t *testing.T) {
	env := events.NewEnvelope(events.PersonDeparted{BookingId: uuid.New()}, time.Now().UTC())
	body, err := json.Marshal(env)
	require.NoError(t, err)

	payload, err := json.Marshal(frame{
		Headers: map[string]string{events.HeaderEventId: env.Id.String()},
		Body:    body,
	})
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, env.Id, decoded.Id)
	assert.Equal(t, events.TypePersonDeparted, decoded.Type)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
