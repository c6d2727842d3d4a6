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

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) storage.SubscriptionStore {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, req wire.SubscriptionRequest, perm storage.OwnerPermission) (*wire.Subscription, error) {
	model, err := r.mapper.ToModel(id.New(), perm.ClientID, req)
	if err != nil {
		r.logger.Errorw("failed to map subscription request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map subscription")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "client_id", perm.ClientID, "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	r.logger.Infow("subscription created", "id", model.ID, "client_id", model.ClientID)
	return r.reload(ctx, model.ID)
}

func (r *SubscriptionRepositoryImpl) Retrieve(ctx context.Context, subscriptionID wire.Identifier, perm storage.OwnerPermission) (*wire.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("id = ?", subscriptionID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found", subscriptionID.String())
		}
		r.logger.Errorw("failed to get subscription", "id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if !perm.Owns(model.ClientID) {
		return nil, apperrors.NewNotFoundError("subscription not found", subscriptionID.String())
	}
	return r.mapper.ToWire(&model)
}

func (r *SubscriptionRepositoryImpl) RetrieveAll(ctx context.Context, filter *storage.SubscriptionFilter, perm storage.OwnerPermission) ([]wire.Subscription, error) {
	if filter == nil {
		filter = &storage.SubscriptionFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).Order("created_at DESC, id")
	if filter.ProgramID != nil {
		q = q.Where("program_id = ?", filter.ProgramID.String())
	}
	if filter.ClientName != nil {
		q = q.Where("client_name = ?", *filter.ClientName)
	}
	if !perm.ReadAll {
		q = q.Where("client_id = ?", perm.ClientID)
	}
	q = q.Offset(int(page.Skip)).Limit(int(page.Limit))

	var rows []*models.SubscriptionModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return r.mapper.ToWires(rows)
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscriptionID wire.Identifier, req wire.SubscriptionRequest, perm storage.OwnerPermission) (*wire.Subscription, error) {
	existing, err := r.Retrieve(ctx, subscriptionID, perm)
	if err != nil {
		return nil, err
	}

	model, err := r.mapper.ToModel(subscriptionID.String(), existing.ClientID, req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map subscription")
	}

	err = r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Where("id = ?", subscriptionID.String()).
		Updates(map[string]any{
			"client_name": model.ClientName,
			"program_id":  model.ProgramID,
			"content":     model.Content,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update subscription", "id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	r.logger.Infow("subscription updated", "id", subscriptionID)
	return r.reload(ctx, subscriptionID.String())
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, subscriptionID wire.Identifier, perm storage.OwnerPermission) (*wire.Subscription, error) {
	sub, err := r.Retrieve(ctx, subscriptionID, perm)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", subscriptionID.String()).Delete(&models.SubscriptionModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete subscription", "id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to delete subscription: %w", err)
	}

	r.logger.Infow("subscription deleted", "id", subscriptionID)
	return sub, nil
}

// Subscribers returns the subscriptions whose filters admit the given
// object, operation and program scope. A subscription without a program
// scope matches every program.
func (r *SubscriptionRepositoryImpl) Subscribers(ctx context.Context, obj wire.ObjectType, op wire.Operation, programID *wire.Identifier) ([]wire.Subscription, error) {
	q := r.db.WithContext(ctx).Model(&models.SubscriptionModel{})
	if programID != nil {
		q = q.Where("program_id IS NULL OR program_id = ?", programID.String())
	} else {
		q = q.Where("program_id IS NULL")
	}

	var rows []*models.SubscriptionModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to query subscribers", "error", err)
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}

	subs, err := r.mapper.ToWires(rows)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map subscriptions")
	}

	matched := subs[:0]
	for _, sub := range subs {
		for _, oo := range sub.ObjectOperations {
			if oo.Matches(obj, op) {
				matched = append(matched, sub)
				break
			}
		}
	}
	return matched, nil
}

func (r *SubscriptionRepositoryImpl) reload(ctx context.Context, subscriptionID string) (*wire.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("id = ?", subscriptionID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload subscription: %w", err)
	}
	return r.mapper.ToWire(&model)
}
