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

// EventHandler serves the /events endpoints.
type EventHandler struct {
	events   storage.EventStore
	vens     storage.VenStore
	notifier *notifier.Notifier
	logger   logger.Interface
}

// NewEventHandler creates an event handler.
func NewEventHandler(events storage.EventStore, vens storage.VenStore, n *notifier.Notifier, log logger.Interface) *EventHandler {
	return &EventHandler{events: events, vens: vens, notifier: n, logger: log}
}

// List handles GET /events.
func (h *EventHandler) List(c *gin.Context) {
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
	programID, err := utils.OptionalQueryID(c, "programID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	perm, err := readPrivacy(c.Request.Context(), claims, h.vens)
	if err != nil {
		utils.Error(c, err)
		return
	}

	events, err := h.events.RetrieveAll(c.Request.Context(), &storage.EventFilter{
		ProgramID:  programID,
		Targets:    targets,
		Pagination: page,
	}, perm)
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Event, len(events))
	for i, e := range events {
		out[i] = e.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /events.
func (h *EventHandler) Create(c *gin.Context) {
	var req wire.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid event body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	event, err := h.events.Create(c.Request.Context(), req, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectEvent, wire.OperationCreate, event.ID, event.WithObjectType(), &event.ProgramID)
	c.JSON(http.StatusCreated, event.WithObjectType())
}

// Retrieve handles GET /events/:eventID.
func (h *EventHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "eventID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	perm, err := readPrivacy(c.Request.Context(), claims, h.vens)
	if err != nil {
		utils.Error(c, err)
		return
	}

	event, err := h.events.Retrieve(c.Request.Context(), id, perm)
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, event.WithObjectType())
}

// Update handles PUT /events/:eventID.
func (h *EventHandler) Update(c *gin.Context) {
	id, err := utils.PathID(c, "eventID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid event body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	event, err := h.events.Update(c.Request.Context(), id, req, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectEvent, wire.OperationUpdate, event.ID, event.WithObjectType(), &event.ProgramID)
	c.JSON(http.StatusOK, event.WithObjectType())
}

// Delete handles DELETE /events/:eventID.
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := utils.PathID(c, "eventID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	event, err := h.events.Delete(c.Request.Context(), id, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectEvent, wire.OperationDelete, event.ID, event.WithObjectType(), &event.ProgramID)
	c.JSON(http.StatusOK, event.WithObjectType())
}
