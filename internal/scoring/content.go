package scoring

import (
	"time"

	"github.com/temcen/storerank/pkg/models"
)

// ContentBased ranks items the user has not touched by cosine similarity to the user's
// weighted-average feature vector. An empty interaction log falls back to Popular.
func (e *Engine) ContentBased(catalog []models.Item, interactions []models.Interaction, limit int) []models.RecommendationScore {
	if limit <= 0 {
		return []models.RecommendationScore{}
	}
	if len(interactions) == 0 {
		return e.Popular(catalog, interactions, limit)
	}

	preference := e.preferenceVector(indexCatalog(catalog), interactions, e.now())
	excluded := interactedItems(interactions)

	scores := make([]models.RecommendationScore, 0, len(catalog))
	for _, item := range catalog {
		if _, seen := excluded[item.ID]; seen || !e.isEligible(item) {
			continue
		}
		scores = append(scores, models.RecommendationScore{
			ItemID: item.ID,
			Score:  CosineSimilarity(e.vectorizer.Vectorize(item), preference),
			Reason: ReasonContent,
		})
	}

	return rank(scores, limit)
}

// PreferenceVector exposes the user's weighted-average feature vector for a snapshot.
func (e *Engine) PreferenceVector(catalog []models.Item, interactions []models.Interaction) []float64 {
	return e.preferenceVector(indexCatalog(catalog), interactions, e.now())
}

func (e *Engine) preferenceVector(index map[string]*models.Item, interactions []models.Interaction, now time.Time) []float64 {
	preference := make([]float64, e.vectorizer.Dimensions())
	totalWeight := 0.0

	for _, in := range interactions {
		item, ok := index[in.ItemID]
		if !ok {
			continue
		}

		weight := e.weighter.Weight(in, now)
		for i, value := range e.vectorizer.Vectorize(*item) {
			preference[i] += value * weight
		}
		totalWeight += weight
	}

	if totalWeight > 0 {
		for i := range preference {
			preference[i] /= totalWeight
		}
	}

	return preference
}
