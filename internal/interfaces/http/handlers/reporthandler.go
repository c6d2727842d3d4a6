package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/notifier"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"

	"openadr/internal/interfaces/http/middleware"
	"openadr/internal/interfaces/http/utils"
)

// ReportHandler serves the /reports endpoints.
type ReportHandler struct {
	reports  storage.ReportStore
	notifier *notifier.Notifier
	logger   logger.Interface
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports storage.ReportStore, n *notifier.Notifier, log logger.Interface) *ReportHandler {
	return &ReportHandler{reports: reports, notifier: n, logger: log}
}

// List handles GET /reports.
func (h *ReportHandler) List(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}

	page, err := utils.ParsePagination(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	programID, err := utils.OptionalQueryID(c, "programID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	eventID, err := utils.OptionalQueryID(c, "eventID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var clientName *string
	if name := c.Query("clientName"); name != "" {
		clientName = &name
	}

	reports, err := h.reports.RetrieveAll(c.Request.Context(), &storage.ReportFilter{
		ProgramID:  programID,
		EventID:    eventID,
		ClientName: clientName,
		Pagination: page,
	}, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Report, len(reports))
	for i, r := range reports {
		out[i] = r.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /reports.
func (h *ReportHandler) Create(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid report body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	report, err := h.reports.Create(c.Request.Context(), req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectReport, wire.OperationCreate, report.ID, report.WithObjectType(), &report.ProgramID)
	c.JSON(http.StatusCreated, report.WithObjectType())
}

// Retrieve handles GET /reports/:reportID.
func (h *ReportHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "reportID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	report, err := h.reports.Retrieve(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report.WithObjectType())
}

// Update handles PUT /reports/:reportID.
func (h *ReportHandler) Update(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "reportID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid report body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	report, err := h.reports.Update(c.Request.Context(), id, req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectReport, wire.OperationUpdate, report.ID, report.WithObjectType(), &report.ProgramID)
	c.JSON(http.StatusOK, report.WithObjectType())
}

// Delete handles DELETE /reports/:reportID.
func (h *ReportHandler) Delete(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "reportID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	report, err := h.reports.Delete(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectReport, wire.OperationDelete, report.ID, report.WithObjectType(), &report.ProgramID)
	c.JSON(http.StatusOK, report.WithObjectType())
}
