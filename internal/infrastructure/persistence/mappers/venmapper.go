package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// venContent is the JSON stored in the VEN content column. The indexed
// columns stay authoritative for clientID, name and targets.
type venContent struct {
	Attributes []wire.ValuesMap `json:"attributes,omitempty"`
}

// VenMapper handles the conversion between wire VENs and persistence
// models.
type VenMapper interface {
	ToModel(id, clientID, venName string, attributes []wire.ValuesMap, targets []wire.Target) (*models.VenModel, error)
	ToWire(model *models.VenModel) (*wire.Ven, error)
	ToWires(models []*models.VenModel) ([]wire.Ven, error)
}

type venMapperImpl struct{}

// NewVenMapper creates a new VEN mapper
func NewVenMapper() VenMapper {
	return &venMapperImpl{}
}

func (m *venMapperImpl) ToModel(id, clientID, venName string, attributes []wire.ValuesMap, targets []wire.Target) (*models.VenModel, error) {
	content, err := json.Marshal(venContent{Attributes: attributes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ven content: %w", err)
	}
	targetsJSON, err := targetsToJSON(targets)
	if err != nil {
		return nil, err
	}
	return &models.VenModel{
		ID:       id,
		ClientID: clientID,
		VenName:  venName,
		Targets:  targetsJSON,
		Content:  datatypes.JSON(content),
	}, nil
}

func (m *venMapperImpl) ToWire(model *models.VenModel) (*wire.Ven, error) {
	if model == nil {
		return nil, nil
	}
	var content venContent
	if err := json.Unmarshal(model.Content, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ven content: %w", err)
	}
	targets, err := targetsFromJSON(model.Targets)
	if err != nil {
		return nil, err
	}
	ven := wire.Ven{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		ClientID:             model.ClientID,
		VenName:              model.VenName,
		Attributes:           content.Attributes,
		Targets:              targets,
	}
	return &ven, nil
}

func (m *venMapperImpl) ToWires(list []*models.VenModel) ([]wire.Ven, error) {
	out := make([]wire.Ven, 0, len(list))
	for _, model := range list {
		v, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
