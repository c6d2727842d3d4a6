package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// ReportMapper handles the conversion between wire reports and
// persistence models.
type ReportMapper interface {
	ToModel(id, clientID string, req wire.ReportRequest) (*models.ReportModel, error)
	ToWire(model *models.ReportModel) (*wire.Report, error)
	ToWires(models []*models.ReportModel) ([]wire.Report, error)
}

type reportMapperImpl struct{}

// NewReportMapper creates a new report mapper
func NewReportMapper() ReportMapper {
	return &reportMapperImpl{}
}

func (m *reportMapperImpl) ToModel(id, clientID string, req wire.ReportRequest) (*models.ReportModel, error) {
	req.ObjectType = ""
	content, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report content: %w", err)
	}
	return &models.ReportModel{
		ID:         id,
		ProgramID:  req.ProgramID.String(),
		EventID:    req.EventID.String(),
		ClientID:   clientID,
		ClientName: req.ClientName,
		ReportName: req.ReportName,
		Content:    datatypes.JSON(content),
	}, nil
}

func (m *reportMapperImpl) ToWire(model *models.ReportModel) (*wire.Report, error) {
	if model == nil {
		return nil, nil
	}
	var req wire.ReportRequest
	if err := json.Unmarshal(model.Content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report content: %w", err)
	}
	report := wire.Report{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		ClientID:             model.ClientID,
		ReportRequest:        req,
	}
	return &report, nil
}

func (m *reportMapperImpl) ToWires(list []*models.ReportModel) ([]wire.Report, error) {
	out := make([]wire.Report, 0, len(list))
	for _, model := range list {
		r, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}
