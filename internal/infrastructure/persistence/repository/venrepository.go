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

// VenWritePolicy decides whether a caller may update or delete the VEN
// owned by ownerClientID. The OpenADR 3 scope model grants write_vens
// without separating VEN-owner writes from BL writes, see
// https://github.com/oadr3-org/specification/discussions/371.
type VenWritePolicy func(perm storage.OwnerPermission, ownerClientID string) bool

// AllowAllVenWrites admits every caller holding the write scope. This is
// the default and matches the scope model linked above.
func AllowAllVenWrites(storage.OwnerPermission, string) bool { return true }

// AllowOwnerVenWrites restricts VEN writes to BL callers and the owning
// client, for deployments that want writes as tight as reads.
func AllowOwnerVenWrites(perm storage.OwnerPermission, ownerClientID string) bool {
	return perm.Owns(ownerClientID)
}

// VenWritePolicyFor maps the configured policy name to its
// implementation. Unknown names fall back to the open policy.
func VenWritePolicyFor(name string) VenWritePolicy {
	if name == "owner" {
		return AllowOwnerVenWrites
	}
	return AllowAllVenWrites
}

type VenRepositoryImpl struct {
	db             *gorm.DB
	mapper         mappers.VenMapper
	resourceMapper mappers.ResourceMapper
	writePolicy    VenWritePolicy
	logger         logger.Interface
}

func NewVenRepository(db *gorm.DB, logger logger.Interface) storage.VenStore {
	return NewVenRepositoryWithPolicy(db, AllowAllVenWrites, logger)
}

// NewVenRepositoryWithPolicy builds a VEN store with an explicit write
// ownership policy.
func NewVenRepositoryWithPolicy(db *gorm.DB, policy VenWritePolicy, logger logger.Interface) storage.VenStore {
	return &VenRepositoryImpl{
		db:             db,
		mapper:         mappers.NewVenMapper(),
		resourceMapper: mappers.NewResourceMapper(),
		writePolicy:    policy,
		logger:         logger,
	}
}

func (r *VenRepositoryImpl) Create(ctx context.Context, req wire.VenRequest, perm storage.OwnerPermission) (*wire.Ven, error) {
	var clientID, venName string
	var attributes []wire.ValuesMap
	var targets []wire.Target

	switch {
	case req.BL != nil:
		if !perm.ReadAll {
			return nil, apperrors.NewForbiddenError("BL_VEN_REQUEST requires a business logic scope")
		}
		clientID, venName = req.BL.ClientID, req.BL.VenName
		attributes, targets = req.BL.Attributes, req.BL.Targets
	case req.Ven != nil:
		clientID, venName = perm.ClientID, req.Ven.VenName
		attributes = req.Ven.Attributes
	default:
		return nil, apperrors.NewValidationError("ven request holds no variant")
	}

	model, err := r.mapper.ToModel(id.New(), clientID, venName, attributes, targets)
	if err != nil {
		r.logger.Errorw("failed to map ven request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map ven")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("ven name or client ID already in use", venName)
		}
		r.logger.Errorw("failed to create ven", "ven_name", venName, "error", err)
		return nil, fmt.Errorf("failed to create ven: %w", err)
	}

	r.logger.Infow("ven created", "id", model.ID, "ven_name", venName, "client_id", clientID)
	return r.reload(ctx, model.ID)
}

func (r *VenRepositoryImpl) Retrieve(ctx context.Context, venID wire.Identifier, perm storage.OwnerPermission) (*wire.Ven, error) {
	var model models.VenModel
	if err := r.db.WithContext(ctx).Where("id = ?", venID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ven not found", venID.String())
		}
		r.logger.Errorw("failed to get ven", "id", venID, "error", err)
		return nil, fmt.Errorf("failed to get ven: %w", err)
	}

	if !perm.Owns(model.ClientID) {
		return nil, apperrors.NewNotFoundError("ven not found", venID.String())
	}
	return r.mapper.ToWire(&model)
}

// writable loads a VEN for update or delete. Writes go through the
// write policy rather than the owner read filter; a denied VEN is
// reported as not found, like a hidden read.
func (r *VenRepositoryImpl) writable(ctx context.Context, venID wire.Identifier, perm storage.OwnerPermission) (*wire.Ven, error) {
	var model models.VenModel
	if err := r.db.WithContext(ctx).Where("id = ?", venID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ven not found", venID.String())
		}
		r.logger.Errorw("failed to get ven", "id", venID, "error", err)
		return nil, fmt.Errorf("failed to get ven: %w", err)
	}

	if !r.writePolicy(perm, model.ClientID) {
		return nil, apperrors.NewNotFoundError("ven not found", venID.String())
	}
	return r.mapper.ToWire(&model)
}

func (r *VenRepositoryImpl) RetrieveAll(ctx context.Context, filter *storage.VenFilter, perm storage.OwnerPermission) ([]wire.Ven, error) {
	if filter == nil {
		filter = &storage.VenFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.VenModel{}).Order("created_at DESC, id")
	if filter.VenName != nil {
		q = q.Where("ven_name = ?", *filter.VenName)
	}
	if !perm.ReadAll {
		q = q.Where("client_id = ?", perm.ClientID)
	}

	filterInSQL := supportsJSONContains(q) || len(filter.Targets) == 0
	if filterInSQL {
		if len(filter.Targets) > 0 {
			q = q.Where("JSON_CONTAINS(targets, CAST(? AS JSON))", mustTargetsJSON(filter.Targets))
		}
		q = q.Offset(int(page.Skip)).Limit(int(page.Limit))
	}

	var rows []*models.VenModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list vens", "error", err)
		return nil, fmt.Errorf("failed to list vens: %w", err)
	}

	vens, err := r.mapper.ToWires(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map vens")
	}
	if !filterInSQL {
		vens = pageInMemory(vens, func(v wire.Ven) []wire.Target { return v.Targets }, filter.Targets, storage.ReadAllPrivacy, page)
	}
	return vens, nil
}

func (r *VenRepositoryImpl) Update(ctx context.Context, venID wire.Identifier, req wire.VenRequest, perm storage.OwnerPermission) (*wire.Ven, error) {
	existing, err := r.writable(ctx, venID, perm)
	if err != nil {
		return nil, err
	}

	venName := req.VenName()
	var attributes []wire.ValuesMap
	targets := existing.Targets

	switch {
	case req.BL != nil:
		if !perm.ReadAll {
			return nil, apperrors.NewForbiddenError("BL_VEN_REQUEST requires a business logic scope")
		}
		if req.BL.ClientID != existing.ClientID {
			return nil, apperrors.NewValidationError("clientID is immutable")
		}
		attributes, targets = req.BL.Attributes, req.BL.Targets
	case req.Ven != nil:
		// VEN callers may not edit targets.
		attributes = req.Ven.Attributes
	default:
		return nil, apperrors.NewValidationError("ven request holds no variant")
	}

	model, err := r.mapper.ToModel(venID.String(), existing.ClientID, venName, attributes, targets)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map ven")
	}

	err = r.db.WithContext(ctx).Model(&models.VenModel{}).
		Where("id = ?", venID.String()).
		Updates(map[string]any{
			"ven_name": model.VenName,
			"targets":  model.Targets,
			"content":  model.Content,
		}).Error
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("ven name already in use", venName)
		}
		r.logger.Errorw("failed to update ven", "id", venID, "error", err)
		return nil, fmt.Errorf("failed to update ven: %w", err)
	}

	r.logger.Infow("ven updated", "id", venID)
	return r.reload(ctx, venID.String())
}

func (r *VenRepositoryImpl) Delete(ctx context.Context, venID wire.Identifier, perm storage.OwnerPermission) (*wire.Ven, error) {
	ven, err := r.writable(ctx, venID, perm)
	if err != nil {
		return nil, err
	}

	var resourceCount int64
	if err := r.db.WithContext(ctx).Model(&models.ResourceModel{}).Where("ven_id = ?", venID.String()).Count(&resourceCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}
	if resourceCount > 0 {
		return nil, apperrors.NewConflictError("ven still has resources attached", venID.String())
	}

	if err := r.db.WithContext(ctx).Where("id = ?", venID.String()).Delete(&models.VenModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete ven", "id", venID, "error", err)
		return nil, fmt.Errorf("failed to delete ven: %w", err)
	}

	r.logger.Infow("ven deleted", "id", venID)
	return ven, nil
}

// TargetsByClientID returns the privacy target set of the VEN carrying
// the client ID: its own targets unioned with those of its resources.
func (r *VenRepositoryImpl) TargetsByClientID(ctx context.Context, clientID string) ([]wire.Target, bool, error) {
	var model models.VenModel
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get ven by client ID: %w", err)
	}

	ven, err := r.mapper.ToWire(&model)
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to map ven")
	}

	var resourceRows []*models.ResourceModel
	if err := r.db.WithContext(ctx).Where("ven_id = ?", model.ID).Find(&resourceRows).Error; err != nil {
		return nil, false, fmt.Errorf("failed to list resources: %w", err)
	}
	resources, err := r.resourceMapper.ToWires(resourceRows)
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to map resources")
	}

	set := wire.NewTargetSet(ven.Targets)
	for _, res := range resources {
		for _, t := range res.Targets {
			set[t] = struct{}{}
		}
	}
	union := make([]wire.Target, 0, len(set))
	for t := range set {
		union = append(union, t)
	}
	return union, true, nil
}

func (r *VenRepositoryImpl) reload(ctx context.Context, venID string) (*wire.Ven, error) {
	var model models.VenModel
	if err := r.db.WithContext(ctx).Where("id = ?", venID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload ven: %w", err)
	}
	return r.mapper.ToWire(&model)
}
