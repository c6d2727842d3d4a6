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

// VenHandler serves the /vens endpoints.
type VenHandler struct {
	vens     storage.VenStore
	notifier *notifier.Notifier
	logger   logger.Interface
}

// NewVenHandler creates a VEN handler.
func NewVenHandler(vens storage.VenStore, n *notifier.Notifier, log logger.Interface) *VenHandler {
	return &VenHandler{vens: vens, notifier: n, logger: log}
}

// List handles GET /vens.
func (h *VenHandler) List(c *gin.Context) {
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
	targets, err := utils.ParseTargets(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	var venName *string
	if name := c.Query("venName"); name != "" {
		venName = &name
	}

	vens, err := h.vens.RetrieveAll(c.Request.Context(), &storage.VenFilter{
		VenName:    venName,
		Targets:    targets,
		Pagination: page,
	}, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Ven, len(vens))
	for i, v := range vens {
		out[i] = v.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /vens.
func (h *VenHandler) Create(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.VenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid ven body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	ven, err := h.vens.Create(c.Request.Context(), req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectVen, wire.OperationCreate, ven.ID, ven.WithObjectType(), nil)
	c.JSON(http.StatusCreated, ven.WithObjectType())
}

// Retrieve handles GET /vens/:venID.
func (h *VenHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	ven, err := h.vens.Retrieve(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ven.WithObjectType())
}

// Update handles PUT /vens/:venID.
func (h *VenHandler) Update(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.VenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid ven body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	ven, err := h.vens.Update(c.Request.Context(), id, req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectVen, wire.OperationUpdate, ven.ID, ven.WithObjectType(), nil)
	c.JSON(http.StatusOK, ven.WithObjectType())
}

// Delete handles DELETE /vens/:venID.
func (h *VenHandler) Delete(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	ven, err := h.vens.Delete(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectVen, wire.OperationDelete, ven.ID, ven.WithObjectType(), nil)
	c.JSON(http.StatusOK, ven.WithObjectType())
}
