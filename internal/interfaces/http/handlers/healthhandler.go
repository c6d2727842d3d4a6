package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the unauthenticated health endpoint.
type HealthHandler struct {
	started          time.Time
	connectionActive func() bool
}

// NewHealthHandler creates the health handler. connectionActive reports
// whether the storage backend is reachable.
func NewHealthHandler(connectionActive func() bool) *HealthHandler {
	return &HealthHandler{started: time.Now(), connectionActive: connectionActive}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	active := h.connectionActive()
	status := http.StatusOK
	state := "healthy"
	if !active {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":            state,
		"connection_active": active,
		"uptime":            time.Since(h.started).String(),
	})
}
