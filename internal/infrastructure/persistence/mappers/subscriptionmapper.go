package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"openadr/internal/infrastructure/persistence/models"
	"openadr/internal/wire"
)

// SubscriptionMapper handles the conversion between wire subscriptions
// and persistence models.
type SubscriptionMapper interface {
	ToModel(id, clientID string, req wire.SubscriptionRequest) (*models.SubscriptionModel, error)
	ToWire(model *models.SubscriptionModel) (*wire.Subscription, error)
	ToWires(models []*models.SubscriptionModel) ([]wire.Subscription, error)
}

type subscriptionMapperImpl struct{}

// NewSubscriptionMapper creates a new subscription mapper
func NewSubscriptionMapper() SubscriptionMapper {
	return &subscriptionMapperImpl{}
}

func (m *subscriptionMapperImpl) ToModel(id, clientID string, req wire.SubscriptionRequest) (*models.SubscriptionModel, error) {
	req.ObjectType = ""
	content, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscription content: %w", err)
	}
	var programID *string
	if req.ProgramID != nil {
		s := req.ProgramID.String()
		programID = &s
	}
	return &models.SubscriptionModel{
		ID:         id,
		ClientID:   clientID,
		ClientName: req.ClientName,
		ProgramID:  programID,
		Content:    datatypes.JSON(content),
	}, nil
}

func (m *subscriptionMapperImpl) ToWire(model *models.SubscriptionModel) (*wire.Subscription, error) {
	if model == nil {
		return nil, nil
	}
	var req wire.SubscriptionRequest
	if err := json.Unmarshal(model.Content, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription content: %w", err)
	}
	sub := wire.Subscription{
		ID:                   wire.Identifier(model.ID),
		CreatedDateTime:      model.CreatedAt.UTC(),
		ModificationDateTime: model.UpdatedAt.UTC(),
		ClientID:             model.ClientID,
		SubscriptionRequest:  req,
	}
	return &sub, nil
}

func (m *subscriptionMapperImpl) ToWires(list []*models.SubscriptionModel) ([]wire.Subscription, error) {
	out := make([]wire.Subscription, 0, len(list))
	for _, model := range list {
		s, err := m.ToWire(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}
