package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Priority ranks events: 0 is the most important, larger numbers matter
// less, and an unspecified priority ranks below every number. The zero
// Priority is unspecified.
type Priority struct {
	value *uint32
}

// UnspecifiedPriority is the lowest priority.
var UnspecifiedPriority = Priority{}

// MaxPriority is the highest priority, numeric value 0.
var MaxPriority = NewPriority(0)

// NewPriority returns a priority with the given numeric value.
func NewPriority(v uint32) Priority {
	return Priority{value: &v}
}

// IsUnspecified reports whether no numeric priority is set.
func (p Priority) IsUnspecified() bool {
	return p.value == nil
}

// Value returns the numeric priority, if one is set.
func (p Priority) Value() (uint32, bool) {
	if p.value == nil {
		return 0, false
	}
	return *p.value, true
}

// Cmp orders priorities by importance: -1 if p ranks below o, 0 if
// equal, +1 if p ranks above o. Unspecified is the minimum, and between
// numbers a smaller value ranks higher.
func (p Priority) Cmp(o Priority) int {
	switch {
	case p.value == nil && o.value == nil:
		return 0
	case p.value == nil:
		return -1
	case o.value == nil:
		return 1
	case *p.value == *o.value:
		return 0
	case *p.value > *o.value:
		return -1
	default:
		return 1
	}
}

func (p Priority) String() string {
	if p.value == nil {
		return "unspecified"
	}
	return fmt.Sprintf("%d", *p.value)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	if p.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.value)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Priority{}
		return nil
	}
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("priority must be null or a non-negative integer: %w", err)
	}
	*p = NewPriority(v)
	return nil
}

// ObjectTypeEvent is the objectType discriminator of events.
const ObjectTypeEvent = "EVENT"

// EventRequest is the client-supplied portion of an event.
type EventRequest struct {
	ObjectType         string              `json:"objectType,omitempty"`
	ProgramID          Identifier          `json:"programID"`
	EventName          *string             `json:"eventName,omitempty"`
	Priority           Priority            `json:"priority"`
	Targets            []Target            `json:"targets,omitempty"`
	ReportDescriptors  []ReportDescriptor  `json:"reportDescriptors,omitempty"`
	PayloadDescriptors []EventPayloadDescriptor `json:"payloadDescriptors,omitempty"`
	IntervalPeriod     *IntervalPeriod     `json:"intervalPeriod,omitempty"`
	Intervals          []EventInterval     `json:"intervals"`
}

// Validate checks the structural constraints of an event request.
func (r EventRequest) Validate() error {
	if r.ObjectType != "" && r.ObjectType != ObjectTypeEvent {
		return fmt.Errorf("objectType must be %s, got %q", ObjectTypeEvent, r.ObjectType)
	}
	if err := r.ProgramID.Validate(); err != nil {
		return fmt.Errorf("programID: %w", err)
	}
	if r.EventName != nil {
		if err := ValidateNameString("eventName", *r.EventName); err != nil {
			return err
		}
	}
	if err := ValidateTargets(r.Targets); err != nil {
		return err
	}
	if len(r.Intervals) == 0 {
		return fmt.Errorf("intervals must not be empty")
	}
	for _, iv := range r.Intervals {
		if err := iv.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Event is a stored event as returned by the VTN.
type Event struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	EventRequest
}

// WithObjectType returns a copy with the objectType discriminator set,
// for serialization.
func (e Event) WithObjectType() Event {
	e.ObjectType = ObjectTypeEvent
	return e
}
