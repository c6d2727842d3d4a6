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

type ProgramRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ProgramMapper
	logger logger.Interface
}

func NewProgramRepository(db *gorm.DB, logger logger.Interface) storage.ProgramStore {
	return &ProgramRepositoryImpl{
		db:     db,
		mapper: mappers.NewProgramMapper(),
		logger: logger,
	}
}

func (r *ProgramRepositoryImpl) Create(ctx context.Context, req wire.ProgramRequest, _ storage.ReadPrivacy) (*wire.Program, error) {
	model, err := r.mapper.ToModel(id.New(), req)
	if err != nil {
		r.logger.Errorw("failed to map program request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map program")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("program name already exists", req.ProgramName)
		}
		r.logger.Errorw("failed to create program", "program_name", req.ProgramName, "error", err)
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	r.logger.Infow("program created", "id", model.ID, "program_name", model.ProgramName)
	return r.reload(ctx, model.ID)
}

func (r *ProgramRepositoryImpl) Retrieve(ctx context.Context, programID wire.Identifier, perm storage.ReadPrivacy) (*wire.Program, error) {
	var model models.ProgramModel
	if err := r.db.WithContext(ctx).Where("id = ?", programID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("program not found", programID.String())
		}
		r.logger.Errorw("failed to get program", "id", programID, "error", err)
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	program, err := r.mapper.ToWire(&model)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map program")
	}
	// Hidden objects are indistinguishable from missing ones.
	if !perm.Admits(program.Targets) {
		return nil, apperrors.NewNotFoundError("program not found", programID.String())
	}
	return program, nil
}

func (r *ProgramRepositoryImpl) RetrieveAll(ctx context.Context, filter *storage.ProgramFilter, perm storage.ReadPrivacy) ([]wire.Program, error) {
	if filter == nil {
		filter = &storage.ProgramFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.ProgramModel{}).Order("created_at DESC, id")

	if supportsJSONContains(q) {
		if len(filter.Targets) > 0 {
			q = q.Where("JSON_CONTAINS(targets, CAST(? AS JSON))", mustTargetsJSON(filter.Targets))
		}
		if !perm.ReadAll {
			q = q.Where("JSON_CONTAINS(CAST(? AS JSON), targets)", mustTargetsJSON(perm.Targets))
		}
		q = q.Offset(int(page.Skip)).Limit(int(page.Limit))
	}

	var rows []*models.ProgramModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list programs", "error", err)
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	programs, err := r.mapper.ToWires(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map programs")
	}
	if !supportsJSONContains(q) {
		programs = pageInMemory(programs, func(p wire.Program) []wire.Target { return p.Targets }, filter.Targets, perm, page)
	}
	return programs, nil
}

func (r *ProgramRepositoryImpl) Update(ctx context.Context, programID wire.Identifier, req wire.ProgramRequest, perm storage.ReadPrivacy) (*wire.Program, error) {
	if _, err := r.Retrieve(ctx, programID, perm); err != nil {
		return nil, err
	}

	model, err := r.mapper.ToModel(programID.String(), req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map program")
	}

	err = r.db.WithContext(ctx).Model(&models.ProgramModel{}).
		Where("id = ?", programID.String()).
		Updates(map[string]any{
			"program_name": model.ProgramName,
			"targets":      model.Targets,
			"content":      model.Content,
		}).Error
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("program name already exists", req.ProgramName)
		}
		r.logger.Errorw("failed to update program", "id", programID, "error", err)
		return nil, fmt.Errorf("failed to update program: %w", err)
	}

	r.logger.Infow("program updated", "id", programID)
	return r.reload(ctx, programID.String())
}

func (r *ProgramRepositoryImpl) Delete(ctx context.Context, programID wire.Identifier, perm storage.ReadPrivacy) (*wire.Program, error) {
	program, err := r.Retrieve(ctx, programID, perm)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", programID.String()).Delete(&models.ProgramModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete program", "id", programID, "error", err)
		return nil, fmt.Errorf("failed to delete program: %w", err)
	}

	r.logger.Infow("program deleted", "id", programID)
	return program, nil
}

// reload fetches the row back so responses carry database-assigned
// timestamps.
func (r *ProgramRepositoryImpl) reload(ctx context.Context, programID string) (*wire.Program, error) {
	var model models.ProgramModel
	if err := r.db.WithContext(ctx).Where("id = ?", programID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload program: %w", err)
	}
	return r.mapper.ToWire(&model)
}
