package scoring

import (
	"github.com/temcen/storerank/pkg/models"
)

// SimilarTo ranks every other item by content similarity to the seed. An unknown seed yields
// an empty list; callers that care check catalog membership themselves.
func (e *Engine) SimilarTo(catalog []models.Item, itemID string, limit int) []models.RecommendationScore {
	if limit <= 0 {
		return []models.RecommendationScore{}
	}

	seed, ok := indexCatalog(catalog)[itemID]
	if !ok {
		return []models.RecommendationScore{}
	}
	seedVector := e.vectorizer.Vectorize(*seed)

	scores := make([]models.RecommendationScore, 0, len(catalog))
	for _, item := range catalog {
		if item.ID == itemID || !e.isEligible(item) {
			continue
		}
		scores = append(scores, models.RecommendationScore{
			ItemID: item.ID,
			Score:  CosineSimilarity(seedVector, e.vectorizer.Vectorize(item)),
			Reason: ReasonSimilar,
		})
	}

	return rank(scores, limit)
}
