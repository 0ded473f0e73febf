package models

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationScore struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type RecommendationResponse struct {
	UserID          uuid.UUID             `json:"user_id"`
	Strategy        string                `json:"strategy"`
	Recommendations []RecommendationScore `json:"recommendations"`
	GeneratedAt     time.Time             `json:"generated_at"`
	CacheHit        bool                  `json:"cache_hit"`
}

type SimilarItemResponse struct {
	SeedItemID      string                `json:"seed_item_id"`
	SeedFound       bool                  `json:"seed_found"`
	Recommendations []RecommendationScore `json:"recommendations"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

type InteractionResponse struct {
	EventID  uuid.UUID `json:"event_id"`
	UserID   uuid.UUID `json:"user_id"`
	ItemID   string    `json:"item_id"`
	Kind     string    `json:"kind"`
	Accepted bool      `json:"accepted"`
}
