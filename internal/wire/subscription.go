package wire

import (
	"fmt"
	"time"
)

// ObjectType names a subscribable object kind.
type ObjectType string

const (
	ObjectProgram      ObjectType = "PROGRAM"
	ObjectEvent        ObjectType = "EVENT"
	ObjectReport       ObjectType = "REPORT"
	ObjectSubscription ObjectType = "SUBSCRIPTION"
	ObjectVen          ObjectType = "VEN"
	ObjectResource     ObjectType = "RESOURCE"
)

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	switch t {
	case ObjectProgram, ObjectEvent, ObjectReport, ObjectSubscription, ObjectVen, ObjectResource:
		return true
	}
	return false
}

// Operation is a write kind a subscription can watch for.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// NotificationMechanism selects how notifications are delivered.
type NotificationMechanism string

const (
	MechanismWebhook   NotificationMechanism = "WEBHOOK"
	MechanismWebsocket NotificationMechanism = "WEBSOCKET"
)

// SubscriptionObjectOperation is one filter of a subscription: which
// object types, which operations, and how to deliver matches.
type SubscriptionObjectOperation struct {
	Objects     []ObjectType          `json:"objects"`
	Operations  []Operation           `json:"operations"`
	Mechanism   NotificationMechanism `json:"mechanism"`
	CallbackURL *string               `json:"callbackUrl,omitempty"`
	BearerToken *string               `json:"bearerToken,omitempty"`
}

// Matches reports whether the filter admits the given object/operation
// pair.
func (f SubscriptionObjectOperation) Matches(obj ObjectType, op Operation) bool {
	objOK := false
	for _, o := range f.Objects {
		if o == obj {
			objOK = true
			break
		}
	}
	if !objOK {
		return false
	}
	for _, o := range f.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// SubscriptionRequest is the client-supplied portion of a subscription.
type SubscriptionRequest struct {
	ObjectType       string                        `json:"objectType,omitempty"`
	ClientName       string                        `json:"clientName"`
	ProgramID        *Identifier                   `json:"programID,omitempty"`
	ObjectOperations []SubscriptionObjectOperation `json:"objectOperations"`
}

// ObjectTypeSubscription is the objectType discriminator of
// subscriptions.
const ObjectTypeSubscription = "SUBSCRIPTION"

// Validate checks the structural constraints of a subscription request.
// An omitted mechanism defaults to WEBHOOK.
func (r SubscriptionRequest) Validate() error {
	if r.ObjectType != "" && r.ObjectType != ObjectTypeSubscription {
		return fmt.Errorf("objectType must be %s, got %q", ObjectTypeSubscription, r.ObjectType)
	}
	if err := ValidateNameString("clientName", r.ClientName); err != nil {
		return err
	}
	if r.ProgramID != nil {
		if err := r.ProgramID.Validate(); err != nil {
			return fmt.Errorf("programID: %w", err)
		}
	}
	for i, oo := range r.ObjectOperations {
		for _, obj := range oo.Objects {
			if !obj.Valid() {
				return fmt.Errorf("objectOperations[%d]: unknown object type %q", i, obj)
			}
		}
		for _, op := range oo.Operations {
			if !op.Valid() {
				return fmt.Errorf("objectOperations[%d]: unknown operation %q", i, op)
			}
		}
		switch oo.Mechanism {
		case MechanismWebhook, MechanismWebsocket, "":
		default:
			return fmt.Errorf("objectOperations[%d]: unknown mechanism %q", i, oo.Mechanism)
		}
		if oo.Mechanism == MechanismWebhook && oo.CallbackURL == nil {
			return fmt.Errorf("objectOperations[%d]: callbackUrl required for WEBHOOK delivery", i)
		}
	}
	return nil
}

// Subscription is a stored subscription as returned by the VTN. ClientID
// records the authenticated creator and never travels on the wire.
type Subscription struct {
	ID                   Identifier `json:"id"`
	CreatedDateTime      time.Time  `json:"createdDateTime"`
	ModificationDateTime time.Time  `json:"modificationDateTime"`
	ClientID             string     `json:"-"`
	SubscriptionRequest
}

// WithObjectType returns a copy with the objectType discriminator set.
func (s Subscription) WithObjectType() Subscription {
	s.ObjectType = ObjectTypeSubscription
	return s
}

// Notification is the message pushed to subscribers when a subscribable
// object is written. Object carries the full wire form of the object.
type Notification struct {
	ID         Identifier `json:"id"`
	ObjectType ObjectType `json:"objectType"`
	Operation  Operation  `json:"operation"`
	Object     any        `json:"object"`
}
