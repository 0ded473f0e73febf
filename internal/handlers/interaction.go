package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/services"
	"github.com/temcen/storerank/pkg/models"
)

type InteractionHandler struct {
	service services.InteractionServiceInterface
	logger  *logrus.Logger
}

func NewInteractionHandler(service services.InteractionServiceInterface, logger *logrus.Logger) *InteractionHandler {
	return &InteractionHandler{
		service: service,
		logger:  logger,
	}
}

// Record handles POST /users/:userId/interactions. Queued events answer 202, applied ones 201.
func (h *InteractionHandler) Record(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}

	var request models.InteractionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Warn("Invalid JSON in interaction request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_JSON",
				"message": "Invalid JSON format",
				"details": err.Error(),
			},
		})
		return
	}

	event, err := h.service.Record(c.Request.Context(), userID, request)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInteraction) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_FAILED",
					"message": "Interaction validation failed",
					"details": err.Error(),
				},
			})
			return
		}

		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"item_id": request.ItemID,
		}).Error("Failed to record interaction")
		respondError(c, http.StatusInternalServerError, "INTERACTION_RECORDING_FAILED", "Failed to record interaction")
		return
	}

	status := http.StatusCreated
	if h.service.Async() {
		status = http.StatusAccepted
	}

	c.JSON(status, models.InteractionResponse{
		EventID:  event.EventID,
		UserID:   event.UserID,
		ItemID:   event.Interaction.ItemID,
		Kind:     string(event.Interaction.Kind),
		Accepted: true,
	})
}
