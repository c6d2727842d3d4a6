package wire

import (
	"encoding/json"
	"fmt"
)

// EventPayloadDescriptor gives clients the context needed to interpret
// event payload values, such as the unit and currency of a PRICE payload.
type EventPayloadDescriptor struct {
	PayloadType ValueType `json:"payloadType"`
	Units       *string   `json:"units,omitempty"`
	Currency    *string   `json:"currency,omitempty"`
}

// ReportPayloadDescriptor describes the measurements a report carries.
type ReportPayloadDescriptor struct {
	PayloadType ValueType `json:"payloadType"`
	ReadingType *string   `json:"readingType,omitempty"`
	Units       *string   `json:"units,omitempty"`
	Accuracy    *float64  `json:"accuracy,omitempty"`
	Confidence  *int      `json:"confidence,omitempty"`
}

// ReportDescriptor is attached to an event to request reports from VENs:
// what to measure, over which targets, and how often.
type ReportDescriptor struct {
	PayloadType   ValueType `json:"payloadType"`
	ReadingType   *string   `json:"readingType,omitempty"`
	Units         *string   `json:"units,omitempty"`
	Targets       []Target  `json:"targets,omitempty"`
	Aggregate     bool      `json:"aggregate"`
	StartInterval int32     `json:"startInterval"`
	NumIntervals  int32     `json:"numIntervals"`
	Historical    bool      `json:"historical"`
	Frequency     int32     `json:"frequency"`
	Repeat        int32     `json:"repeat"`
}

// ProgramDescription is a link to human or machine readable program
// documentation. The wire field name is uppercase URL.
type ProgramDescription struct {
	URL string `json:"URL"`
}

// PayloadDescriptor is the tagged union carried in program
// payloadDescriptors: either an event or a report payload descriptor,
// discriminated by objectType.
type PayloadDescriptor struct {
	Event  *EventPayloadDescriptor
	Report *ReportPayloadDescriptor
}

const (
	payloadDescriptorEventTag  = "EVENT_PAYLOAD_DESCRIPTOR"
	payloadDescriptorReportTag = "REPORT_PAYLOAD_DESCRIPTOR"
)

func (p PayloadDescriptor) MarshalJSON() ([]byte, error) {
	switch {
	case p.Event != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			EventPayloadDescriptor
		}{payloadDescriptorEventTag, *p.Event})
	case p.Report != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			ReportPayloadDescriptor
		}{payloadDescriptorReportTag, *p.Report})
	}
	return nil, fmt.Errorf("payload descriptor holds no variant")
}

func (p *PayloadDescriptor) UnmarshalJSON(data []byte) error {
	var tag struct {
		ObjectType string `json:"objectType"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.ObjectType {
	case payloadDescriptorEventTag, "":
		var d EventPayloadDescriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		*p = PayloadDescriptor{Event: &d}
	case payloadDescriptorReportTag:
		var d ReportPayloadDescriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		*p = PayloadDescriptor{Report: &d}
	default:
		return fmt.Errorf("unknown payload descriptor objectType %q", tag.ObjectType)
	}
	return nil
}
