package events

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-faster/errors"
)

// CurrentSchemaVersion is stamped on every newly recorded event.
const CurrentSchemaVersion = 2

var ErrUnknownType = errors.New("unknown event type")

var factories = map[Type]func() Details{
	TypeApplicationSubmitted:          func() Details { return &ApplicationSubmitted{} },
	TypeApplicationAssessed:           func() Details { return &ApplicationAssessed{} },
	TypeApplicationWithdrawn:          func() Details { return &ApplicationWithdrawn{} },
	TypeAssessmentInfoRequested:       func() Details { return &AssessmentInfoRequested{} },
	TypeRequestForPlacementCreated:    func() Details { return &RequestForPlacementCreated{} },
	TypePlacementApplicationWithdrawn: func() Details { return &PlacementApplicationWithdrawn{} },
	TypeMatchRequestWithdrawn:         func() Details { return &MatchRequestWithdrawn{} },
	TypeBookingMade:                   func() Details { return &BookingMade{} },
	TypeBookingConfirmed:              func() Details { return &BookingConfirmed{} },
	TypeBookingChanged:                func() Details { return &BookingChanged{} },
	TypeBookingCancelled:              func() Details { return &BookingCancelled{} },
	TypePersonArrived:                 func() Details { return &PersonArrived{} },
	TypePersonNotArrived:              func() Details { return &PersonNotArrived{} },
	TypePersonDeparted:                func() Details { return &PersonDeparted{} },
}

// Stored type names that were renamed.
var aliases = map[Type]Type{
	"booking-date-changed": TypeBookingChanged,
}

// upcaster rewrites the raw details of one schema version into the next.
type upcaster func(fields map[string]interface{}) error

var upcasters = map[Type]map[int]upcaster{
	TypeBookingCancelled: {1: upcastBookingCancelledV1},
}

// v1 stored cancelledBy as a bare staff code and had no triggering entity type.
func upcastBookingCancelledV1(fields map[string]interface{}) error {
	if code, ok := fields["cancelledBy"].(string); ok {
		fields["cancelledBy"] = map[string]interface{}{"staffCode": code}
	}
	if _, ok := fields["triggeringEntityType"]; !ok {
		fields["triggeringEntityType"] = "booking"
	}
	return nil
}

// Canonical resolves legacy aliases to the current type name.
func Canonical(t Type) Type {
	if alias, ok := aliases[t]; ok {
		return alias
	}
	return t
}

// Accepts reports whether a stored type satisfies a request for expected.
func Accepts(stored, expected Type) bool {
	return Canonical(stored) == Canonical(expected)
}

// Known reports whether t (or its alias) has a registered payload.
func Known(t Type) bool {
	_, ok := factories[Canonical(t)]
	return ok
}

// Types lists every current event type, sorted.
func Types() []Type {
	out := make([]Type, 0, len(factories))
	for t := range factories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DecodeDetails decodes raw details stored at version into the current payload shape.
func DecodeDetails(t Type, version int, raw json.RawMessage) (Details, error) {
	canonical := Canonical(t)
	factory, ok := factories[canonical]
	if !ok {
		return nil, errors.Wrap(ErrUnknownType, string(t))
	}

	if version < CurrentSchemaVersion {
		upgraded, err := upcast(canonical, version, raw)
		if err != nil {
			return nil, err
		}
		raw = upgraded
	}

	details := factory()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, details); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("decode %s details", canonical))
		}
	}
	return derefDetails(details), nil
}

func upcast(t Type, from int, raw json.RawMessage) (json.RawMessage, error) {
	steps := upcasters[t]
	if len(steps) == 0 {
		return raw, nil
	}

	fields := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, errors.Wrap(err, "decode legacy details")
		}
	}
	for v := from; v < CurrentSchemaVersion; v++ {
		step, ok := steps[v]
		if !ok {
			continue
		}
		if err := step(fields); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("upcast %s v%d", t, v))
		}
	}
	return json.Marshal(fields)
}

// derefDetails returns value payloads so callers can type-switch on the struct types.
func derefDetails(d Details) Details {
	switch v := d.(type) {
	case *ApplicationSubmitted:
		return *v
	case *ApplicationAssessed:
		return *v
	case *ApplicationWithdrawn:
		return *v
	case *AssessmentInfoRequested:
		return *v
	case *RequestForPlacementCreated:
		return *v
	case *PlacementApplicationWithdrawn:
		return *v
	case *MatchRequestWithdrawn:
		return *v
	case *BookingMade:
		return *v
	case *BookingConfirmed:
		return *v
	case *BookingChanged:
		return *v
	case *BookingCancelled:
		return *v
	case *PersonArrived:
		return *v
	case *PersonNotArrived:
		return *v
	case *PersonDeparted:
		return *v
	}
	return d
}
