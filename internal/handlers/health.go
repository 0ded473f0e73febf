package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/services"
)

type HealthHandler struct {
	logger        *logrus.Logger
	healthService *services.HealthService
}

func NewHealthHandler(logger *logrus.Logger, healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		healthService: healthService,
	}
}

// Check runs every dependency probe. Degraded still answers 200 so load balancers keep routing.
func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.CheckHealth(c.Request.Context())

	httpStatus := http.StatusOK
	if status.Status == services.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithFields(logrus.Fields{
			"failed":     status.Critical,
			"request_id": c.GetString("request_id"),
		}).Warn("Health check failed")
	}

	c.JSON(httpStatus, status)
}

// Live answers without touching dependencies.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
