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

// SubscriptionHandler serves the /subscriptions endpoints.
type SubscriptionHandler struct {
	subscriptions storage.SubscriptionStore
	notifier      *notifier.Notifier
	logger        logger.Interface
}

// NewSubscriptionHandler creates a subscription handler.
func NewSubscriptionHandler(subscriptions storage.SubscriptionStore, n *notifier.Notifier, log logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, notifier: n, logger: log}
}

// List handles GET /subscriptions.
func (h *SubscriptionHandler) List(c *gin.Context) {
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
	var clientName *string
	if name := c.Query("clientName"); name != "" {
		clientName = &name
	}

	subscriptions, err := h.subscriptions.RetrieveAll(c.Request.Context(), &storage.SubscriptionFilter{
		ProgramID:  programID,
		ClientName: clientName,
		Pagination: page,
	}, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	out := make([]wire.Subscription, len(subscriptions))
	for i, s := range subscriptions {
		out[i] = s.WithObjectType()
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /subscriptions.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid subscription body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	subscription, err := h.subscriptions.Create(c.Request.Context(), req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectSubscription, wire.OperationCreate, subscription.ID, subscription.WithObjectType(), nil)
	c.JSON(http.StatusCreated, subscription.WithObjectType())
}

// Retrieve handles GET /subscriptions/:subscriptionID.
func (h *SubscriptionHandler) Retrieve(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "subscriptionID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	subscription, err := h.subscriptions.Retrieve(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription.WithObjectType())
}

// Update handles PUT /subscriptions/:subscriptionID.
func (h *SubscriptionHandler) Update(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "subscriptionID")
	if err != nil {
		utils.Error(c, err)
		return
	}
	var req wire.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, apperrors.NewValidationError("invalid subscription body", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(c, apperrors.NewValidationError(err.Error()))
		return
	}

	subscription, err := h.subscriptions.Update(c.Request.Context(), id, req, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectSubscription, wire.OperationUpdate, subscription.ID, subscription.WithObjectType(), nil)
	c.JSON(http.StatusOK, subscription.WithObjectType())
}

// Delete handles DELETE /subscriptions/:subscriptionID.
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		utils.Error(c, err)
		return
	}
	id, err := utils.PathID(c, "subscriptionID")
	if err != nil {
		utils.Error(c, err)
		return
	}

	subscription, err := h.subscriptions.Delete(c.Request.Context(), id, ownerPerm(claims))
	if err != nil {
		utils.Error(c, err)
		return
	}

	h.notifier.Publish(c.Request.Context(), wire.ObjectSubscription, wire.OperationDelete, subscription.ID, subscription.WithObjectType(), nil)
	c.JSON(http.StatusOK, subscription.WithObjectType())
}
