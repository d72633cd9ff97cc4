package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the stable wire shape of a domain event: the common header plus typed details.
type Envelope struct {
	Id           uuid.UUID `json:"id"`
	OccurredAt   time.Time `json:"timestamp"`
	Type         Type      `json:"eventType"`
	EventDetails Details   `json:"eventDetails"`
}

// NewEnvelope stamps details with a fresh id.
func NewEnvelope(details Details, occurredAt time.Time) Envelope {
	return Envelope{
		Id:           uuid.New(),
		OccurredAt:   occurredAt,
		Type:         details.DetailsType(),
		EventDetails: details,
	}
}

func (e Envelope) EventId() uuid.UUID {
	return e.Id
}

func (e Envelope) EventType() string {
	return string(e.Type)
}

func (e Envelope) Payload() interface{} {
	return e
}

func (e Envelope) Timestamp() time.Time {
	return e.OccurredAt
}

// rawEnvelope is used when the concrete details type is not known up front.
type rawEnvelope struct {
	Id           uuid.UUID       `json:"id"`
	OccurredAt   time.Time       `json:"timestamp"`
	Type         Type            `json:"eventType"`
	EventDetails json.RawMessage `json:"eventDetails"`
}

// UnmarshalEnvelope decodes a wire envelope, resolving details through the registry.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, err
	}
	details, err := DecodeDetails(raw.Type, CurrentSchemaVersion, raw.EventDetails)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Id:           raw.Id,
		OccurredAt:   raw.OccurredAt,
		Type:         details.DetailsType(),
		EventDetails: details,
	}, nil
}
