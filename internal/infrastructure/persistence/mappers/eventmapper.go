package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// EventMapper handles the conversion between wire events and persistence
// models.
type EventMapper interface {
	ToModel(id string, req wire.EventRequest) (*models.EventModel, error)
	ToWire(model *models.EventModel) (*wire.Event, error)
	ToWires(models []*models.EventModel) ([]wire.Event, error)
}

type eventMapperImpl struct{}

// NewEventMapper creates a new event mapper
func NewEventMapper() EventMapper {
	return &eventMapperImpl{}
}

func (m *eventMapperImpl) ToModel(id string, req wire.EventRequest) (*models.EventModel, error) {
	req.ObjectType = ""
	content, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event content: %w", err)
	}
	targets, err := targetsToJSON(req.Targets)
	if err != nil {
		return nil, err
	}
	var priority *int64
	if v, ok := req.Priority.Value(); ok {
		p := int64(v)
		priority = &p
	}
	return &models.EventModel{
		ID:        id,
		ProgramID: req.ProgramID.String(),
		EventName: req.EventName,
		Priority:  priority,
		Targets:   targets,
		Content:   datatypes.JSON(content),
	}, nil
}

func (m *eventMapperImpl) ToWire(model *models.EventModel) (*wire.Event, error) {
	if model == nil {
		return nil, nil
	}
	var req wire.EventRequest
	if err := json.Unmarshal(model.Content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event content: %w", err)
	}
	event := wire.Event{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		EventRequest:         req,
	}
	return &event, nil
}

func (m *eventMapperImpl) ToWires(list []*models.EventModel) ([]wire.Event, error) {
	out := make([]wire.Event, 0, len(list))
	for _, model := range list {
		e, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}
