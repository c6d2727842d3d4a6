package wire

import (
	"fmt"
	"time"
)

// ObjectTypeProgram is the objectType discriminator of programs.
const ObjectTypeProgram = "PROGRAM"

// ProgramRequest is the client-supplied portion of a program.
type ProgramRequest struct {
	ObjectType          string               `json:"objectType,omitempty"`
	ProgramName         string               `json:"programName"`
	IntervalPeriod      *IntervalPeriod      `json:"intervalPeriod,omitempty"`
	ProgramDescriptions []ProgramDescription `json:"programDescriptions,omitempty"`
	PayloadDescriptors  []PayloadDescriptor  `json:"payloadDescriptors,omitempty"`
	Attributes          []ValuesMap          `json:"attributes,omitempty"`
	Targets             []Target             `json:"targets,omitempty"`
}

// Validate checks the structural constraints of a program request.
func (r ProgramRequest) Validate() error {
	if r.ObjectType != "" && r.ObjectType != ObjectTypeProgram {
		return fmt.Errorf("objectType must be %s, got %q", ObjectTypeProgram, r.ObjectType)
	}
	if err := ValidateNameString("programName", r.ProgramName); err != nil {
		return err
	}
	if err := ValidateTargets(r.Targets); err != nil {
		return err
	}
	return ValidateValuesMaps("attributes", r.Attributes)
}

// Program is a stored program as returned by the VTN.
type Program struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ProgramRequest
}

// WithObjectType returns a copy with the objectType discriminator set.
func (p Program) WithObjectType() Program {
	p.ObjectType = ObjectTypeProgram
	return p
}
