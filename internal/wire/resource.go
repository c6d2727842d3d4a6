package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// objectType discriminators for resources and their request variants.
const (
	ObjectTypeResource       = "RESOURCE"
	ObjectTypeBLResourceReq  = "BL_RESOURCE_REQUEST"
	ObjectTypeVenResourceReq = "VEN_RESOURCE_REQUEST"
)

// BLResourceRequest is the business-logic form of a resource write. The
// owning VEN comes from the request path, never from the body.
type BLResourceRequest struct {
	ResourceName string      `json:"resourceName"`
	Attributes   []ValuesMap `json:"attributes,omitempty"`
	Targets      []Target    `json:"targets,omitempty"`
}

// Validate checks the structural constraints of a BL resource request.
func (r BLResourceRequest) Validate() error {
	if err := ValidateNameString("resourceName", r.ResourceName); err != nil {
		return err
	}
	if err := ValidateTargets(r.Targets); err != nil {
		return err
	}
	return ValidateValuesMaps("attributes", r.Attributes)
}

// VenResourceRequest is the VEN-submitted form: targets may not be set.
type VenResourceRequest struct {
	ResourceName string      `json:"resourceName"`
	Attributes   []ValuesMap `json:"attributes,omitempty"`
}

// Validate checks the structural constraints of a VEN-submitted request.
func (r VenResourceRequest) Validate() error {
	if err := ValidateNameString("resourceName", r.ResourceName); err != nil {
		return err
	}
	return ValidateValuesMaps("attributes", r.Attributes)
}

// ResourceRequest is the tagged union of the two resource write forms,
// discriminated by objectType.
type ResourceRequest struct {
	BL  *BLResourceRequest
	Ven *VenResourceRequest
}

// ResourceName returns the name common to both variants.
func (r ResourceRequest) ResourceName() string {
	if r.BL != nil {
		return r.BL.ResourceName
	}
	if r.Ven != nil {
		return r.Ven.ResourceName
	}
	return ""
}

// Validate checks whichever variant is present.
func (r ResourceRequest) Validate() error {
	switch {
	case r.BL != nil:
		return r.BL.Validate()
	case r.Ven != nil:
		return r.Ven.Validate()
	}
	return fmt.Errorf("resource request holds no variant")
}

func (r ResourceRequest) MarshalJSON() ([]byte, error) {
	switch {
	case r.BL != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			BLResourceRequest
		}{ObjectTypeBLResourceReq, *r.BL})
	case r.Ven != nil:
		return json.Marshal(struct {
			ObjectType string `json:"objectType"`
			VenResourceRequest
		}{ObjectTypeVenResourceReq, *r.Ven})
	}
	return nil, fmt.Errorf("resource request holds no variant")
}

func (r *ResourceRequest) UnmarshalJSON(data []byte) error {
	var tag struct {
		ObjectType string `json:"objectType"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.ObjectType {
	case ObjectTypeBLResourceReq:
		var v BLResourceRequest
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = ResourceRequest{BL: &v}
	case ObjectTypeVenResourceReq:
		var v VenResourceRequest
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = ResourceRequest{Ven: &v}
	default:
		return fmt.Errorf("resource request objectType must be %s or %s, got %q",
			ObjectTypeBLResourceReq, ObjectTypeVenResourceReq, tag.ObjectType)
	}
	return nil
}

// Resource is a stored resource as returned by the VTN.
type Resource struct {
	ID                   Identifier  `json:"id"`
	CreatedDateTime      time.Time   `json:"createdDateTime"`
	ModificationDateTime time.Time   `json:"modificationDateTime"`
	ObjectType           string      `json:"objectType,omitempty"`
	VenID                Identifier  `json:"venID"`
	ResourceName         string      `json:"resourceName"`
	Attributes           []ValuesMap `json:"attributes,omitempty"`
	Targets              []Target    `json:"targets,omitempty"`
}

// WithObjectType returns a copy with the objectType discriminator set.
func (r Resource) WithObjectType() Resource {
	r.ObjectType = ObjectTypeResource
	return r
}
