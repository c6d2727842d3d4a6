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

// ResourceHandler serves the /vens/:venID/resources endpoints.
type ResourceHandler struct {
	resources storage.ResourceStore
	notifier  *notifier.Notifier
	logger    logger.Interface
}

// NewResourceHandler creates a resource handler.
func NewResourceHandler(resources storage.ResourceStore, n *notifier.Notifier, log logger.Interface) *ResourceHandler {
	return &ResourceHandler{resources: resources, notifier: n, logger: log}
}

// List handles GET /vens/:venID/resources.
func (h *ResourceHandler) List(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	venID, err := utils.PathID(c, "venID")
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
	var resourceName *string
	if name := c.Query("resourceName"); name != "" {
		resourceName = &name
	}

	resources, err := h.resources.RetrieveAll(c.Request.Context(), venID, &storage.ResourceFilter{
		ResourceName: resourceName,
		Targets:      targets,
		Pagination:   page,
	}, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Resource, len(resources))
	for i, r := range resources {
		out[i] = r.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /vens/:venID/resources.
func (h *ResourceHandler) Create(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	venID, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid resource body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	resource, err := h.resources.Create(c.Request.Context(), venID, req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectResource, wire.OperationCreate, resource.ID, resource.WithObjectType(), nil)
	c.JSON(http.StatusCreated, resource.WithObjectType())
}

// Retrieve handles GET /vens/:venID/resources/:resourceID.
func (h *ResourceHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	venID, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "resourceID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	resource, err := h.resources.Retrieve(c.Request.Context(), venID, id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resource.WithObjectType())
}

// Update handles PUT /vens/:venID/resources/:resourceID.
func (h *ResourceHandler) Update(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	venID, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "resourceID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid resource body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	resource, err := h.resources.Update(c.Request.Context(), venID, id, req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectResource, wire.OperationUpdate, resource.ID, resource.WithObjectType(), nil)
	c.JSON(http.StatusOK, resource.WithObjectType())
}

// Delete handles DELETE /vens/:venID/resources/:resourceID.
func (h *ResourceHandler) Delete(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	venID, err := utils.PathID(c, "venID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "resourceID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	resource, err := h.resources.Delete(c.Request.Context(), venID, id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectResource, wire.OperationDelete, resource.ID, resource.WithObjectType(), nil)
	c.JSON(http.StatusOK, resource.WithObjectType())
}
