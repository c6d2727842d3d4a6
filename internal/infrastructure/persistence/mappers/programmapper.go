package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// ProgramMapper handles the conversion between wire programs and
// persistence models.
type ProgramMapper interface {
	ToModel(id string, req wire.ProgramRequest) (*models.ProgramModel, error)
	ToWire(model *models.ProgramModel) (*wire.Program, error)
	ToWires(models []*models.ProgramModel) ([]wire.Program, error)
}

type programMapperImpl struct{}

// NewProgramMapper creates a new program mapper
func NewProgramMapper() ProgramMapper {
	return &programMapperImpl{}
}

func (m *programMapperImpl) ToModel(id string, req wire.ProgramRequest) (*models.ProgramModel, error) {
	req.ObjectType = ""
	content, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal program content: %w", err)
	}
	targets, err := targetsToJSON(req.Targets)
	if err != nil {
		return nil, err
	}
	return &models.ProgramModel{
		ID:          id,
		ProgramName: req.ProgramName,
		Targets:     targets,
		Content:     datatypes.JSON(content),
	}, nil
}

func (m *programMapperImpl) ToWire(model *models.ProgramModel) (*wire.Program, error) {
	if model == nil {
		return nil, nil
	}
	var req wire.ProgramRequest
	if err := json.Unmarshal(model.Content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal program content: %w", err)
	}
	program := wire.Program{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		ProgramRequest:       req,
	}
	return &program, nil
}

func (m *programMapperImpl) ToWires(list []*models.ProgramModel) ([]wire.Program, error) {
	out := make([]wire.Program, 0, len(list))
	for _, model := range list {
		p, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
