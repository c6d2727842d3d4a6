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

type ResourceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ResourceMapper
	logger logger.Interface
}

func NewResourceRepository(db *gorm.DB, logger logger.Interface) storage.ResourceStore {
	return &ResourceRepositoryImpl{
		db:     db,
		mapper: mappers.NewResourceMapper(),
		logger: logger,
	}
}

// ownedVen loads the parent VEN and checks the caller may touch it.
func (r *ResourceRepositoryImpl) ownedVen(ctx context.Context, venID wire.Identifier, perm storage.OwnerPermission) error {
	var model models.VenModel
	if err := r.db.WithContext(ctx).Where("id = ?", venID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("ven not found", venID.String())
		}
		return fmt.Errorf("failed to get ven: %w", err)
	}
	if !perm.Owns(model.ClientID) {
		return apperrors.NewNotFoundError("ven not found", venID.String())
	}
	return nil
}

func (r *ResourceRepositoryImpl) Create(ctx context.Context, venID wire.Identifier, req wire.ResourceRequest, perm storage.OwnerPermission) (*wire.Resource, error) {
	if err := r.ownedVen(ctx, venID, perm); err != nil {
		return nil, err
	}

	var resourceName string
	var attributes []wire.ValuesMap
	var targets []wire.Target

	switch {
	case req.BL != nil:
		if !perm.ReadAll {
			return nil, apperrors.NewForbiddenError("BL_RESOURCE_REQUEST requires a business logic scope")
		}
		resourceName, attributes, targets = req.BL.ResourceName, req.BL.Attributes, req.BL.Targets
	case req.Ven != nil:
		resourceName, attributes = req.Ven.ResourceName, req.Ven.Attributes
	default:
		return nil, apperrors.NewValidationError("resource request holds no variant")
	}

	model, err := r.mapper.ToModel(id.New(), venID.String(), resourceName, attributes, targets)
	if err != nil {
		r.logger.Errorw("failed to map resource request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map resource")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("resource name already exists for this ven", resourceName)
		}
		r.logger.Errorw("failed to create resource", "ven_id", venID, "error", err)
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	r.logger.Infow("resource created", "id", model.ID, "ven_id", venID, "resource_name", resourceName)
	return r.reload(ctx, model.ID)
}

func (r *ResourceRepositoryImpl) Retrieve(ctx context.Context, venID, resourceID wire.Identifier, perm storage.OwnerPermission) (*wire.Resource, error) {
	if err := r.ownedVen(ctx, venID, perm); err != nil {
		return nil, err
	}

	var model models.ResourceModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND ven_id = ?", resourceID.String(), venID.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("resource not found", resourceID.String())
		}
		r.logger.Errorw("failed to get resource", "id", resourceID, "error", err)
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return r.mapper.ToWire(&model)
}

func (r *ResourceRepositoryImpl) RetrieveAll(ctx context.Context, venID wire.Identifier, filter *storage.ResourceFilter, perm storage.OwnerPermission) ([]wire.Resource, error) {
	if err := r.ownedVen(ctx, venID, perm); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &storage.ResourceFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.ResourceModel{}).
		Where("ven_id = ?", venID.String()).
		Order("created_at DESC, id")
	if filter.ResourceName != nil {
		q = q.Where("resource_name = ?", *filter.ResourceName)
	}

	filterInSQL := supportsJSONContains(q) || len(filter.Targets) == 0
	if filterInSQL {
		if len(filter.Targets) > 0 {
			q = q.Where("JSON_CONTAINS(targets, CAST(? AS JSON))", mustTargetsJSON(filter.Targets))
		}
		q = q.Offset(int(page.Skip)).Limit(int(page.Limit))
	}

	var rows []*models.ResourceModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list resources", "ven_id", venID, "error", err)
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	resources, err := r.mapper.ToWires(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map resources")
	}
	if !filterInSQL {
		resources = pageInMemory(resources, func(res wire.Resource) []wire.Target { return res.Targets }, filter.Targets, storage.ReadAllPrivacy, page)
	}
	return resources, nil
}

func (r *ResourceRepositoryImpl) Update(ctx context.Context, venID, resourceID wire.Identifier, req wire.ResourceRequest, perm storage.OwnerPermission) (*wire.Resource, error) {
	existing, err := r.Retrieve(ctx, venID, resourceID, perm)
	if err != nil {
		return nil, err
	}

	resourceName := req.ResourceName()
	var attributes []wire.ValuesMap
	targets := existing.Targets

	switch {
	case req.BL != nil:
		if !perm.ReadAll {
			return nil, apperrors.NewForbiddenError("BL_RESOURCE_REQUEST requires a business logic scope")
		}
		attributes, targets = req.BL.Attributes, req.BL.Targets
	case req.Ven != nil:
		// VEN callers may not edit targets.
		attributes = req.Ven.Attributes
	default:
		return nil, apperrors.NewValidationError("resource request holds no variant")
	}

	model, err := r.mapper.ToModel(resourceID.String(), venID.String(), resourceName, attributes, targets)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map resource")
	}

	err = r.db.WithContext(ctx).Model(&models.ResourceModel{}).
		Where("id = ?", resourceID.String()).
		Updates(map[string]any{
			"resource_name": model.ResourceName,
			"targets":       model.Targets,
			"content":       model.Content,
		}).Error
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("resource name already exists for this ven", resourceName)
		}
		r.logger.Errorw("failed to update resource", "id", resourceID, "error", err)
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	r.logger.Infow("resource updated", "id", resourceID)
	return r.reload(ctx, resourceID.String())
}

func (r *ResourceRepositoryImpl) Delete(ctx context.Context, venID, resourceID wire.Identifier, perm storage.OwnerPermission) (*wire.Resource, error) {
	resource, err := r.Retrieve(ctx, venID, resourceID, perm)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", resourceID.String()).Delete(&models.ResourceModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete resource", "id", resourceID, "error", err)
		return nil, fmt.Errorf("failed to delete resource: %w", err)
	}

	r.logger.Infow("resource deleted", "id", resourceID)
	return resource, nil
}

func (r *ResourceRepositoryImpl) reload(ctx context.Context, resourceID string) (*wire.Resource, error) {
	var model models.ResourceModel
	if err := r.db.WithContext(ctx).Where("id = ?", resourceID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload resource: %w", err)
	}
	return r.mapper.ToWire(&model)
}
