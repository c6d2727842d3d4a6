// Package wire defines the OpenADR 3 JSON wire types exchanged between
// VTN and clients: programs, events, reports, vens, resources,
// subscriptions, and the value objects they are built from. All types
// serialize to the camelCase JSON representation of the protocol.
package wire

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// identifierPattern is the allowed shape of VTN object IDs and other
// constrained strings: URL-safe, 1 to 128 characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]{1,128}$`)

// Identifier is a URL-safe string of 1 to 128 characters drawn from
// [A-Za-z0-9._~-]. It is used for object IDs and foreign keys.
type Identifier string

// NewIdentifier validates s and returns it as an Identifier.
func NewIdentifier(s string) (Identifier, error) {
	if !identifierPattern.MatchString(s) {
		return "", fmt.Errorf("invalid identifier %q: must be 1-128 URL-safe characters", s)
	}
	return Identifier(s), nil
}

func (i Identifier) String() string {
	return string(i)
}

// Validate checks the identifier constraints.
func (i Identifier) Validate() error {
	_, err := NewIdentifier(string(i))
	return err
}

func (i *Identifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewIdentifier(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ValidateNameString checks the 1-128 character bound the protocol puts on
// user-supplied name fields such as programName and venName.
func ValidateNameString(field, s string) error {
	if len(s) < 1 || len(s) > 128 {
		return fmt.Errorf("%s must be between 1 and 128 characters, got %d", field, len(s))
	}
	return nil
}
