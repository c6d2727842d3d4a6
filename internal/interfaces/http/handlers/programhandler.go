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

// ProgramHandler serves the /programs endpoints.
type ProgramHandler struct {
	programs storage.ProgramStore
	vens     storage.VenStore
	notifier *notifier.Notifier
	logger   logger.Interface
}

// NewProgramHandler creates a program handler.
func NewProgramHandler(programs storage.ProgramStore, vens storage.VenStore, n *notifier.Notifier, log logger.Interface) *ProgramHandler {
	return &ProgramHandler{programs: programs, vens: vens, notifier: n, logger: log}
}

// List handles GET /programs.
func (h *ProgramHandler) List(c *gin.Context) {
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

	perm, err := readPrivacy(c.Request.Context(), claims, h.vens)
	if err != nil {
		utils.Error(c, err)
		return
	}

	programs, err := h.programs.RetrieveAll(c.Request.Context(), &storage.ProgramFilter{
		Targets:    targets,
		Pagination: page,
	}, perm)
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Program, len(programs))
	for i, p := range programs {
		out[i] = p.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /programs.
func (h *ProgramHandler) Create(c *gin.Context) {
	var req wire.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid program body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	program, err := h.programs.Create(c.Request.Context(), req, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectProgram, wire.OperationCreate, program.ID, program.WithObjectType(), &program.ID)
	c.JSON(http.StatusCreated, program.WithObjectType())
}

// Retrieve handles GET /programs/:programID.
func (h *ProgramHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "programID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	perm, err := readPrivacy(c.Request.Context(), claims, h.vens)
	if err != nil {
		utils.Error(c, err)
		return
	}

	program, err := h.programs.Retrieve(c.Request.Context(), id, perm)
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, program.WithObjectType())
}

// Update handles PUT /programs/:programID.
func (h *ProgramHandler) Update(c *gin.Context) {
	id, err := utils.PathID(c, "programID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid program body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	program, err := h.programs.Update(c.Request.Context(), id, req, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectProgram, wire.OperationUpdate, program.ID, program.WithObjectType(), &program.ID)
	c.JSON(http.StatusOK, program.WithObjectType())
}

// Delete handles DELETE /programs/:programID.
func (h *ProgramHandler) Delete(c *gin.Context) {
	id, err := utils.PathID(c, "programID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	program, err := h.programs.Delete(c.Request.Context(), id, storage.ReadAllPrivacy)
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectProgram, wire.OperationDelete, program.ID, program.WithObjectType(), &program.ID)
	c.JSON(http.StatusOK, program.WithObjectType())
}
