package wire

import (
	"fmt"
	"time"
)

// ObjectTypeReport is the objectType discriminator of reports.
const ObjectTypeReport = "REPORT"

// ReportInterval is one slice of measured data within a report resource.
type ReportInterval struct {
	ID             int32           `json:"id"`
	IntervalPeriod *IntervalPeriod `json:"intervalPeriod,omitempty"`
	Payloads       []ValuesMap     `json:"payloads"`
}

// ReportResource carries the measurements of one resource inside a
// report.
type ReportResource struct {
	ResourceName   string           `json:"resourceName"`
	IntervalPeriod *IntervalPeriod  `json:"intervalPeriod,omitempty"`
	Intervals      []ReportInterval `json:"intervals"`
}

// ReportRequest is the client-supplied portion of a report.
type ReportRequest struct {
	ObjectType         string                    `json:"objectType,omitempty"`
	ProgramID          Identifier                `json:"programID"`
	EventID            Identifier                `json:"eventID"`
	ClientName         string                    `json:"clientName"`
	ReportName         *string                   `json:"reportName,omitempty"`
	PayloadDescriptors []ReportPayloadDescriptor `json:"payloadDescriptors,omitempty"`
	Resources          []ReportResource          `json:"resources"`
}

// Validate checks the structural constraints of a report request.
func (r ReportRequest) Validate() error {
	if r.ObjectType != "" && r.ObjectType != ObjectTypeReport {
		return fmt.Errorf("objectType must be %s, got %q", ObjectTypeReport, r.ObjectType)
	}
	if err := r.ProgramID.Validate(); err != nil {
		return fmt.Errorf("programID: %w", err)
	}
	if err := r.EventID.Validate(); err != nil {
		return fmt.Errorf("eventID: %w", err)
	}
	if err := ValidateNameString("clientName", r.ClientName); err != nil {
		return err
	}
	if r.ReportName != nil {
		if err := ValidateNameString("reportName", *r.ReportName); err != nil {
			return err
		}
	}
	for _, d := range r.PayloadDescriptors {
		if len(d.PayloadType) < 1 || len(d.PayloadType) > 128 {
			return fmt.Errorf("payload descriptor type must be 1-128 characters")
		}
	}
	for _, res := range r.Resources {
		if err := ValidateNameString("resourceName", res.ResourceName); err != nil {
			return err
		}
		for _, iv := range res.Intervals {
			if err := ValidateValuesMaps("payloads", iv.Payloads); err != nil {
				return err
			}
		}
	}
	return nil
}

// Report is a stored report as returned by the VTN. ClientID records the
// authenticated creator and never travels on the wire.
type Report struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ClientID             string     `json:"-"`
	ReportRequest
}

// WithObjectType returns a copy with the objectType discriminator set.
func (r Report) WithObjectType() Report {
	r.ObjectType = ObjectTypeReport
	return r
}
