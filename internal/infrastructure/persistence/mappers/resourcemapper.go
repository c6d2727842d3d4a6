package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// resourceContent is the JSON stored in the resource content column.
type resourceContent struct {
	Attributes []wire.ValuesMap `json:"attributes,omitempty"`
}

// ResourceMapper handles the conversion between wire resources and
// persistence models.
type ResourceMapper interface {
	ToModel(id, venID, resourceName string, attributes []wire.ValuesMap, targets []wire.Target) (*models.ResourceModel, error)
	ToWire(model *models.ResourceModel) (*wire.Resource, error)
	ToWires(models []*models.ResourceModel) ([]wire.Resource, error)
}

type resourceMapperImpl struct{}

// NewResourceMapper creates a new resource mapper
func NewResourceMapper() ResourceMapper {
	return &resourceMapperImpl{}
}

func (m *resourceMapperImpl) ToModel(id, venID, resourceName string, attributes []wire.ValuesMap, targets []wire.Target) (*models.ResourceModel, error) {
	content, err := json.Marshal(resourceContent{Attributes: attributes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource content: %w", err)
	}
	targetsJSON, err := targetsToJSON(targets)
	if err != nil {
		return nil, err
	}
	return &models.ResourceModel{
		ID:           id,
		VenID:        venID,
		ResourceName: resourceName,
		Targets:      targetsJSON,
		Content:      datatypes.JSON(content),
	}, nil
}

func (m *resourceMapperImpl) ToWire(model *models.ResourceModel) (*wire.Resource, error) {
	if model == nil {
		return nil, nil
	}
	var content resourceContent
	if err := json.Unmarshal(model.Content, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource content: %w", err)
	}
	targets, err := targetsFromJSON(model.Targets)
	if err != nil {
		return nil, err
	}
	resource := wire.Resource{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		VenID:                wire.Identifier(model.VenID),
		ResourceName:         model.ResourceName,
		Attributes:           content.Attributes,
		Targets:              targets,
	}
	return &resource, nil
}

func (m *resourceMapperImpl) ToWires(list []*models.ResourceModel) ([]wire.Resource, error) {
	out := make([]wire.Resource, 0, len(list))
	for _, model := range list {
		r, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}
