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

type ReportRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ReportMapper
	logger logger.Interface
}

func NewReportRepository(db *gorm.DB, logger logger.Interface) storage.ReportStore {
	return &ReportRepositoryImpl{
		db:     db,
		mapper: mappers.NewReportMapper(),
		logger: logger,
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, req wire.ReportRequest, perm storage.OwnerPermission) (*wire.Report, error) {
	if err := r.eventExists(ctx, req.EventID); err != nil {
		return nil, err
	}

	model, err := r.mapper.ToModel(id.New(), perm.ClientID, req)
	if err != nil {
		r.logger.Errorw("failed to map report request to model", "error", err)
		return nil, apperrors.NewInternalError("failed to map report")
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create report", "event_id", req.EventID, "error", err)
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	r.logger.Infow("report created", "id", model.ID, "event_id", model.EventID, "client_id", model.ClientID)
	return r.reload(ctx, model.ID)
}

func (r *ReportRepositoryImpl) Retrieve(ctx context.Context, reportID wire.Identifier, perm storage.OwnerPermission) (*wire.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", reportID.String()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("report not found", reportID.String())
		}
		r.logger.Errorw("failed to get report", "id", reportID, "error", err)
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if !perm.Owns(model.ClientID) {
		return nil, apperrors.NewNotFoundError("report not found", reportID.String())
	}
	report, err := r.mapper.ToWire(&model)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map report")
	}
	return report, nil
}

func (r *ReportRepositoryImpl) RetrieveAll(ctx context.Context, filter *storage.ReportFilter, perm storage.OwnerPermission) ([]wire.Report, error) {
	if filter == nil {
		filter = &storage.ReportFilter{}
	}
	page := filter.Pagination.Normalize()

	q := r.db.WithContext(ctx).Model(&models.ReportModel{}).Order("created_at DESC, id")
	if filter.ProgramID != nil {
		q = q.Where("program_id = ?", filter.ProgramID.String())
	}
	if filter.EventID != nil {
		q = q.Where("event_id = ?", filter.EventID.String())
	}
	if filter.ClientName != nil {
		q = q.Where("client_name = ?", *filter.ClientName)
	}
	if !perm.ReadAll {
		q = q.Where("client_id = ?", perm.ClientID)
	}
	q = q.Offset(int(page.Skip)).Limit(int(page.Limit))

	var rows []*models.ReportModel
	if err := q.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list reports", "error", err)
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return r.mapper.ToWires(rows)
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, reportID wire.Identifier, req wire.ReportRequest, perm storage.OwnerPermission) (*wire.Report, error) {
	existing, err := r.Retrieve(ctx, reportID, perm)
	if err != nil {
		return nil, err
	}

	// The owning client is captured on create and never changes.
	model, err := r.mapper.ToModel(reportID.String(), existing.ClientID, req)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to map report")
	}

	err = r.db.WithContext(ctx).Model(&models.ReportModel{}).
		Where("id = ?", reportID.String()).
		Updates(map[string]any{
			"program_id":  model.ProgramID,
			"event_id":    model.EventID,
			"client_name": model.ClientName,
			"report_name": model.ReportName,
			"content":     model.Content,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update report", "id", reportID, "error", err)
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	r.logger.Infow("report updated", "id", reportID)
	return r.reload(ctx, reportID.String())
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, reportID wire.Identifier, perm storage.OwnerPermission) (*wire.Report, error) {
	report, err := r.Retrieve(ctx, reportID, perm)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", reportID.String()).Delete(&models.ReportModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete report", "id", reportID, "error", err)
		return nil, fmt.Errorf("failed to delete report: %w", err)
	}

	r.logger.Infow("report deleted", "id", reportID)
	return report, nil
}

func (r *ReportRepositoryImpl) eventExists(ctx context.Context, eventID wire.Identifier) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EventModel{}).Where("id = ?", eventID.String()).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check event: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError("event not found", eventID.String())
	}
	return nil
}

func (r *ReportRepositoryImpl) reload(ctx context.Context, reportID string) (*wire.Report, error) {
	var model models.ReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", reportID).First(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to reload report: %w", err)
	}
	return r.mapper.ToWire(&model)
}
