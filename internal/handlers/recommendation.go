package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/services"
	"github.com/temcen/storerank/pkg/models"
)

type RecommendationHandler struct {
	service services.RecommendationServiceInterface
	logger  *logrus.Logger
}

func NewRecommendationHandler(service services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

// Get handles GET /users/:userId/recommendations?strategy=&limit=
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid user ID format")
		return
	}

	strategy, err := services.ParseStrategy(c.Query("strategy"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_STRATEGY", "Strategy must be one of hybrid, content, collaborative, popular")
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	result, err := h.service.Recommend(c.Request.Context(), services.RecommendationRequest{
		UserID:   userID,
		Strategy: strategy,
		Limit:    limit,
	})
	if err != nil {
		h.respondServiceError(c, err, logrus.Fields{"user_id": userID, "strategy": strategy})
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse{
		UserID:          result.UserID,
		Strategy:        string(result.Strategy),
		Recommendations: result.Recommendations,
		GeneratedAt:     result.GeneratedAt,
		CacheHit:        result.CacheHit,
	})
}

// Similar handles GET /items/:itemId/similar?limit=. An unknown seed yields an empty list.
func (h *RecommendationHandler) Similar(c *gin.Context) {
	itemID := c.Param("itemId")

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	result, err := h.service.Similar(c.Request.Context(), itemID, limit)
	if err != nil {
		h.respondServiceError(c, err, logrus.Fields{"item_id": itemID})
		return
	}

	c.JSON(http.StatusOK, models.SimilarItemResponse{
		SeedItemID:      result.SeedItemID,
		SeedFound:       result.SeedFound,
		Recommendations: result.Recommendations,
		GeneratedAt:     result.GeneratedAt,
	})
}

func (h *RecommendationHandler) respondServiceError(c *gin.Context, err error, fields logrus.Fields) {
	switch {
	case errors.Is(err, services.ErrUnknownStrategy):
		respondError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.WithError(err).WithFields(fields).Warn("Recommendation request timed out")
		respondError(c, http.StatusGatewayTimeout, "RECOMMENDATION_TIMEOUT", "Recommendation sources did not respond in time")
	default:
		h.logger.WithError(err).WithFields(fields).Error("Failed to generate recommendations")
		respondError(c, http.StatusInternalServerError, "RECOMMENDATION_GENERATION_FAILED", "Failed to generate recommendations")
	}
}

// parseLimit returns 0 when the query omits limit, letting the service apply its default.
func parseLimit(c *gin.Context) (int, bool) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "Limit must be a positive integer")
		return 0, false
	}
	return limit, true
}
