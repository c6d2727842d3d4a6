package wire

import (
	"fmt"
	"strings"
)

// Predefined target labels. Anything else is a private label.
const (
	TargetLabelGroup                = "GROUP"
	TargetLabelResourceName         = "RESOURCE_NAME"
	TargetLabelVenName              = "VEN_NAME"
	TargetLabelEventName            = "EVENT_NAME"
	TargetLabelProgramName          = "PROGRAM_NAME"
	TargetLabelPowerServiceLocation = "POWER_SERVICE_LOCATION"
	TargetLabelServiceArea          = "SERVICE_AREA"
)

// Target is a grouping tag attached to programs, events, vens and
// resources, written as "label:value". A bare value without a label is
// also accepted. Visibility filtering compares targets as opaque strings,
// so "GROUP:g1" and "g1" are distinct tags.
type Target string

// NewTarget builds a "label:value" target.
func NewTarget(label, value string) Target {
	return Target(label + ":" + value)
}

// Label returns the part before the first colon, or "" for a bare value.
func (t Target) Label() string {
	if i := strings.IndexByte(string(t), ':'); i >= 0 {
		return string(t)[:i]
	}
	return ""
}

// Value returns the part after the first colon, or the whole target for
// a bare value.
func (t Target) Value() string {
	if i := strings.IndexByte(string(t), ':'); i >= 0 {
		return string(t)[i+1:]
	}
	return string(t)
}

// Validate checks the target shape. Labels must be 1-128 characters and
// must not contain dots; values must be non-empty.
func (t Target) Validate() error {
	s := string(t)
	if s == "" {
		return fmt.Errorf("target must not be empty")
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		label, value := s[:i], s[i+1:]
		if len(label) < 1 || len(label) > 128 {
			return fmt.Errorf("target label must be 1-128 characters in %q", s)
		}
		if strings.ContainsRune(label, '.') {
			return fmt.Errorf("target label must not contain dots in %q", s)
		}
		if value == "" {
			return fmt.Errorf("target value must not be empty in %q", s)
		}
	}
	return nil
}

// ValidateTargets validates every target of a list.
func ValidateTargets(targets []Target) error {
	for i, t := range targets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
	}
	return nil
}

// TargetSet is a lookup set over targets.
type TargetSet map[Target]struct{}

// NewTargetSet builds a set from one or more target lists.
func NewTargetSet(lists ...[]Target) TargetSet {
	s := make(TargetSet)
	for _, list := range lists {
		for _, t := range list {
			s[t] = struct{}{}
		}
	}
	return s
}

// Contains reports whether t is in the set.
func (s TargetSet) Contains(t Target) bool {
	_, ok := s[t]
	return ok
}

// ContainsAll reports whether every target of the list is in the set. An
// empty list is trivially contained.
func (s TargetSet) ContainsAll(targets []Target) bool {
	for _, t := range targets {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// TargetsSubset reports whether sub ⊆ super, comparing targets as
// opaque strings.
func TargetsSubset(sub, super []Target) bool {
	return NewTargetSet(super).ContainsAll(sub)
}
