package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/persistence/mappers"
	"openadr/internal/infrastructure/persistence/models"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/id"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

// eventOrder lists events highest priority first; unspecified priorities
// sort last and ties break on recency.
const eventOrder = "priority IS NULL, priority ASC, created_at DESC, id"

type EventRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.EventMapper
	logger logger.Interface
}

func NewEventRepository(db *gorm.DB, logger logger.Interface) storage.EventStore {
	return &EventRepositoryImpl{
		db:     db,
		mapper: mappers.NewEventMapper(),
		logger: logger,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, req wire.EventRequest, _ storage.ReadPrivacy) (*wire.Event, error) {
	if err := r.programExists(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	model, err := r.mapper.ToModel(id.New(), req)
	if err != nil {
		r.logger.Errorw("failed to map event request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map event")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create event", "program_id", req.ProgramID, "error", err)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	r.logger.Infow("event created", "id", model.ID, "program_id", model.ProgramID)
	return r.reload(ctx, model.ID)
}

func (r *EventRepositoryImpl) Retrieve(ctx context.Context, eventID wire.Identifier, perm storage.ReadPrivacy) (*wire.Event, error) {
	var model models.EventModel
	if err := r.db.WithContext(ctx).Where("id = ?", eventID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("event not found", eventID.String())
		}
		r.logger.Errorw("failed to get event", "id", eventID, "error", err)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event, err := r.mapper.ToWire(&model)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map event")
	}
	// Hidden objects are indistinguishable from missing ones.
	if !perm.Admits(event.Targets) {
		return nil, apperrors.NewNotFoundError("event not found", eventID.String())
	}
	return event, nil
}

func (r *EventRepositoryImpl) RetrieveAll(ctx context.Context, filter *storage.EventFilter, perm storage.ReadPrivacy) ([]wire.Event, error) {
	if filter == nil {
		filter = &storage.EventFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.EventModel{}).Order(eventOrder)
	if filter.ProgramID != nil {
		q = q.Where("program_id = ?", filter.ProgramID.String())
	}

	if supportsJSONContains(q) {
		if len(filter.Targets) > 0 {
			q = q.Where("JSON_CONTAINS(targets, CAST(? AS JSON))", mustTargetsJSON(filter.Targets))
		}
		if !perm.ReadAll {
			q = q.Where("JSON_CONTAINS(CAST(? AS JSON), targets)", mustTargetsJSON(perm.Targets))
		}
		q = q.Offset(int(page.Skip)).Limit(int(page.Limit))
	}

	var rows []*models.EventModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list events", "error", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events, err := r.mapper.ToWires(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map events")
	}
	if !supportsJSONContains(q) {
		events = pageInMemory(events, func(e wire.Event) []wire.Target { return e.Targets }, filter.Targets, perm, page)
	}
	return events, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, eventID wire.Identifier, req wire.EventRequest, perm storage.ReadPrivacy) (*wire.Event, error) {
	if _, err := r.Retrieve(ctx, eventID, perm); err != nil {
		return nil, err
	}
	if err := r.programExists(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	model, err := r.mapper.ToModel(eventID.String(), req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map event")
	}

	err = r.db.WithContext(ctx).Model(&models.EventModel{}).
		Where("id = ?", eventID.String()).
		Updates(map[string]any{
			"program_id": model.ProgramID,
			"event_name": model.EventName,
			"priority":   model.Priority,
			"targets":    model.Targets,
			"content":    model.Content,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update event", "id", eventID, "error", err)
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	r.logger.Infow("event updated", "id", eventID)
	return r.reload(ctx, eventID.String())
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, eventID wire.Identifier, perm storage.ReadPrivacy) (*wire.Event, error) {
	event, err := r.Retrieve(ctx, eventID, perm)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", eventID.String()).Delete(&models.EventModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete event", "id", eventID, "error", err)
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	r.logger.Infow("event deleted", "id", eventID)
	return event, nil
}

func (r *EventRepositoryImpl) programExists(ctx context.Context, programID wire.Identifier) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProgramModel{}).Where("id = ?", programID.String()).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check program: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError("program not found", programID.String())
	}
	return nil
}

func (r *EventRepositoryImpl) reload(ctx context.Context, eventID string) (*wire.Event, error) {
	var model models.EventModel
	if err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload event: %w", err)
	}
	return r.mapper.ToWire(&model)
}
