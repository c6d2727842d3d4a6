// Package mappers converts between wire objects and persistence models.
// Each mapper serializes the client-supplied content into the model's
// JSON content column and breaks filterable fields out into columns.
package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/wire"
)

// targetsToJSON serializes a target list for the targets column. Nil
// lists become an empty JSON array so containment checks never see NULL.
func targetsToJSON(targets []wire.Target) (datatypes.JSON, error) {
	if targets == nil {
		targets = []wire.Target{}
	}
	raw, err := json.Marshal(targets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal targets: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// targetsFromJSON deserializes the targets column.
func targetsFromJSON(raw datatypes.JSON) ([]wire.Target, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var targets []wire.Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, nil
	}
	return targets, nil
}
