package storage

import (
	"fmt"

	"openadr/internal/wire"
)

// Pagination bounds list queries. Limit defaults to 50 and is capped
// there.
type Pagination struct {
	Skip  int64
	Limit int64
}

// DefaultLimit is the page size used when none is given, and the
// maximum a caller may request.
const DefaultLimit = 50

// Validate checks the pagination bounds.
func (p Pagination) Validate() error {
	if p.Skip < 0 {
		return fmt.Errorf("skip must not be negative, got %d", p.Skip)
	}
	if p.Limit < 0 || p.Limit > DefaultLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", DefaultLimit, p.Limit)
	}
	return nil
}

// Normalize fills in the default limit.
func (p Pagination) Normalize() Pagination {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// ProgramFilter narrows program lists. Targets is a containment filter:
// returned programs carry every listed target.
type ProgramFilter struct {
	Targets []wire.Target
	Pagination
}

// EventFilter narrows event lists.
type EventFilter struct {
	ProgramID *wire.Identifier
	Targets   []wire.Target
	Pagination
}

// ReportFilter narrows report lists.
type ReportFilter struct {
	ProgramID  *wire.Identifier
	EventID    *wire.Identifier
	ClientName *string
	Pagination
}

// VenFilter narrows VEN lists.
type VenFilter struct {
	VenName *string
	Targets []wire.Target
	Pagination
}

// ResourceFilter narrows resource lists beneath one VEN.
type ResourceFilter struct {
	ResourceName *string
	Targets      []wire.Target
	Pagination
}

// SubscriptionFilter narrows subscription lists.
type SubscriptionFilter struct {
	ProgramID  *wire.Identifier
	ClientName *string
	Pagination
}
