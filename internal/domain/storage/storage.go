// Package storage defines the repository contracts the HTTP layer is
// written against. Implementations live under
// internal/infrastructure/persistence.
package storage

import (
	"context"

	"openadr/internal/wire"
)

// Crud is the generic contract every object store implements. Every
// operation receives the caller's permission so visibility filtering
// happens inside the store, next to the query.
type Crud[T any, Req any, Filter any, Perm any] interface {
	Create(ctx context.Context, req Req, perm Perm) (*T, error)
	Retrieve(ctx context.Context, id wire.Identifier, perm Perm) (*T, error)
	RetrieveAll(ctx context.Context, filter *Filter, perm Perm) ([]T, error)
	Update(ctx context.Context, id wire.Identifier, req Req, perm Perm) (*T, error)
	Delete(ctx context.Context, id wire.Identifier, perm Perm) (*T, error)
}

// ReadPrivacy gates reads of programs and events. When ReadAll is set no
// filtering happens. Otherwise only objects whose targets are a subset
// of Targets are visible; with an empty set only untargeted objects are.
type ReadPrivacy struct {
	ReadAll bool
	Targets []wire.Target
}

// ReadAllPrivacy is the unfiltered permission of BL callers.
var ReadAllPrivacy = ReadPrivacy{ReadAll: true}

// PrivacyFor builds the permission of a VEN caller with privacy set p.
func PrivacyFor(targets []wire.Target) ReadPrivacy {
	return ReadPrivacy{Targets: targets}
}

// Admits reports whether an object with the given targets is visible
// under this permission.
func (p ReadPrivacy) Admits(targets []wire.Target) bool {
	if p.ReadAll {
		return true
	}
	return wire.TargetsSubset(targets, p.Targets)
}

// OwnerPermission gates VEN-owned objects: reports, subscriptions, vens
// and resources. When ReadAll is set every object is accessible;
// otherwise access is limited to objects owned by ClientID.
type OwnerPermission struct {
	ReadAll  bool
	ClientID string
}

// BLOwner is the unrestricted permission of BL callers.
var BLOwner = OwnerPermission{ReadAll: true}

// OwnerFor builds the permission of a VEN caller.
func OwnerFor(clientID string) OwnerPermission {
	return OwnerPermission{ClientID: clientID}
}

// Owns reports whether the permission grants access to an object owned
// by the given client.
func (p OwnerPermission) Owns(clientID string) bool {
	return p.ReadAll || p.ClientID == clientID
}

// ProgramStore stores programs.
type ProgramStore interface {
	Crud[wire.Program, wire.ProgramRequest, ProgramFilter, ReadPrivacy]
}

// EventStore stores events.
type EventStore interface {
	Crud[wire.Event, wire.EventRequest, EventFilter, ReadPrivacy]
}

// ReportStore stores reports. The Perm carries the creating client on
// writes.
type ReportStore interface {
	Crud[wire.Report, wire.ReportRequest, ReportFilter, OwnerPermission]
}

// VenStore stores VENs and computes privacy target sets.
type VenStore interface {
	Crud[wire.Ven, wire.VenRequest, VenFilter, OwnerPermission]

	// TargetsByClientID returns the union of the VEN's targets with the
	// targets of all its resources. found is false when no VEN carries
	// the client ID.
	TargetsByClientID(ctx context.Context, clientID string) (targets []wire.Target, found bool, err error)
}

// ResourceStore stores resources beneath a VEN. The venID scopes every
// operation.
type ResourceStore interface {
	Create(ctx context.Context, venID wire.Identifier, req wire.ResourceRequest, perm OwnerPermission) (*wire.Resource, error)
	Retrieve(ctx context.Context, venID, id wire.Identifier, perm OwnerPermission) (*wire.Resource, error)
	RetrieveAll(ctx context.Context, venID wire.Identifier, filter *ResourceFilter, perm OwnerPermission) ([]wire.Resource, error)
	Update(ctx context.Context, venID, id wire.Identifier, req wire.ResourceRequest, perm OwnerPermission) (*wire.Resource, error)
	Delete(ctx context.Context, venID, id wire.Identifier, perm OwnerPermission) (*wire.Resource, error)
}

// SubscriptionStore stores subscriptions and resolves the subscribers a
// notification should reach.
type SubscriptionStore interface {
	Crud[wire.Subscription, wire.SubscriptionRequest, SubscriptionFilter, OwnerPermission]

	// Subscribers returns the subscriptions whose filters admit the
	// given object, operation and program scope.
	Subscribers(ctx context.Context, obj wire.ObjectType, op wire.Operation, programID *wire.Identifier) ([]wire.Subscription, error)
}
