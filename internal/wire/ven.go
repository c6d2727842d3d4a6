package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// objectType discriminators for VEN objects and their request variants.
const (
	ObjectTypeVen        = "VEN"
	ObjectTypeBLVenReq   = "BL_VEN_REQUEST"
	ObjectTypeVenVenReq  = "VEN_VEN_REQUEST"
)

// BLVenRequest is the business-logic form of a VEN write: the caller
// names the client and may set targets.
type BLVenRequest struct {
	ClientID   string      `json:"clientID"`
	VenName    string      `json:"venName"`
	Attributes []ValuesMap `json:"attributes,omitempty"`
	Targets    []Target    `json:"targets,omitempty"`
}

// Validate checks the structural constraints of a BL VEN request.
func (r BLVenRequest) Validate() error {
	if err := ValidateNameString("clientID", r.ClientID); err != nil {
		return err
	}
	if err := ValidateNameString("venName", r.VenName); err != nil {
		return err
	}
	if err := ValidateTargets(r.Targets); err != nil {
		return err
	}
	return ValidateValuesMaps("attributes", r.Attributes)
}

// VenVenRequest is the VEN-submitted form of a VEN write: the client ID
// comes from the bearer token and targets may not be edited.
type VenVenRequest struct {
	VenName    string      `json:"venName"`
	Attributes []ValuesMap `json:"attributes,omitempty"`
}

// Validate checks the structural constraints of a VEN-submitted request.
func (r VenVenRequest) Validate() error {
	if err := ValidateNameString("venName", r.VenName); err != nil {
		return err
	}
	return ValidateValuesMaps("attributes", r.Attributes)
}

// VenRequest is the tagged union of the two VEN write forms,
// discriminated by objectType.
type VenRequest struct {
	BL  *BLVenRequest
	Ven *VenVenRequest
}

// VenName returns the name common to both variants.
func (r VenRequest) VenName() string {
	if r.BL != nil {
		return r.BL.VenName
	}
	if r.Ven != nil {
		return r.Ven.VenName
	}
	return ""
}

// Validate checks whichever variant is present.
func (r VenRequest) Validate() error {
	switch {
	case r.BL != nil:
		return r.BL.Validate()
	case r.Ven != nil:
		return r.Ven.Validate()
	}
	return fmt.Errorf("ven request holds no variant")
}

func (r VenRequest) MarshalJSON() ([]byte, error) {
	switch {
	case r.BL != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			BLVenRequest
		}{ObjectTypeBLVenReq, *r.BL})
	case r.Ven != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			VenVenRequest
		}{ObjectTypeVenVenReq, *r.Ven})
	}
	return nil, fmt.Errorf("ven request holds no variant")
}

func (r *VenRequest) UnmarshalJSON(data []byte) error {
	var tag struct {
		ObjectType string `json:"objectType"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.ObjectType {
	case ObjectTypeBLVenReq:
		var v BLVenRequest
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = VenRequest{BL: &v}
	case ObjectTypeVenVenReq:
		var v VenVenRequest
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = VenRequest{Ven: &v}
	default:
		return fmt.Errorf("ven request objectType must be %s or %s, got %q",
			ObjectTypeBLVenReq, ObjectTypeVenVenReq, tag.ObjectType)
	}
	return nil
}

// Ven is a stored VEN as returned by the VTN. Resources is filled only
// when the caller asks for embedded resources.
type Ven struct {
	ID                   Identifier  `json:"id"`
	CreatedDateTime      time.Time   `json:"createdDateTime"`
	ModificationDateTime time.Time   `json:"modificationDateTime"`
	ObjectType           string      `json:"objectType,omitempty"`
	ClientID             string      `json:"clientID"`
	VenName              string      `json:"venName"`
	Attributes           []ValuesMap `json:"attributes,omitempty"`
	Targets              []Target    `json:"targets,omitempty"`
	Resources            []Resource  `json:"resources,omitempty"`
}

// WithObjectType returns a copy with the objectType discriminator set.
func (v Ven) WithObjectType() Ven {
	v.ObjectType = ObjectTypeVen
	return v
}
