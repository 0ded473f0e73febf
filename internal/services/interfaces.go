package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/temcen/storerank/pkg/models"
)

// RecommendationCache stores ranked lists per user. Implementations degrade to a miss on
// backend failures. Set takes the version Get returned for the same request.
type RecommendationCache interface {
	Get(ctx context.Context, userID uuid.UUID, strategy string, limit int) ([]models.RecommendationScore, int64, bool)
	Set(ctx context.Context, userID uuid.UUID, strategy string, limit int, version int64, recs []models.RecommendationScore)
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// EventPublisher hands interaction events to the asynchronous pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event models.InteractionEvent) error
}

// RecommendationServiceInterface defines the interface for recommendation operations
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error)
	Similar(ctx context.Context, itemID string, limit int) (*SimilarResult, error)
}

// InteractionServiceInterface defines the interface for interaction recording
type InteractionServiceInterface interface {
	Record(ctx context.Context, userID uuid.UUID, req models.InteractionRequest) (*models.InteractionEvent, error)
	Async() bool
}
