package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/shareride-auth/internal/logger"
)

// Readiness reports whether the dependencies are reachable.
type Readiness interface {
	Ready(ctx context.Context) error
}

// Health serves liveness and readiness probes.
type Health struct {
	readiness Readiness
	logger    *logger.Logger
}

func NewHealth(readiness Readiness, logger *logger.Logger) *Health {
	return &Health{readiness: readiness, logger: logger}
}

func (h *Health) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Health) Ready(c *gin.Context) {
	if err := h.readiness.Ready(c.Request.Context()); err != nil {
		h.logger.Warn("Health handler: not ready",
			"error", err.Error())
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
