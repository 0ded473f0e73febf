package scoring

import (
	"time"

	"github.com/temcen/storerank/pkg/models"
)

// Collaborative ranks untouched items by a blend of the user's category affinity,
// review-count popularity and rating.
func (e *Engine) Collaborative(catalog []models.Item, interactions []models.Interaction, limit int) []models.RecommendationScore {
	if limit <= 0 {
		return []models.RecommendationScore{}
	}

	affinity := e.categoryAffinity(indexCatalog(catalog), interactions, e.now())
	excluded := interactedItems(interactions)

	scores := make([]models.RecommendationScore, 0, len(catalog))
	for _, item := range catalog {
		if _, seen := excluded[item.ID]; seen || !e.isEligible(item) {
			continue
		}

		score := e.affinity.Category*affinity[item.Category] +
			e.affinity.Popularity*(logReviews(item)/10) +
			e.affinity.Rating*(item.Rating/5)

		scores = append(scores, models.RecommendationScore{
			ItemID: item.ID,
			Score:  score,
			Reason: ReasonAffinity,
		})
	}

	return rank(scores, limit)
}

// CategoryAffinity returns the normalized category distribution for a snapshot.
func (e *Engine) CategoryAffinity(catalog []models.Item, interactions []models.Interaction) map[string]float64 {
	return e.categoryAffinity(indexCatalog(catalog), interactions, e.now())
}

func (e *Engine) categoryAffinity(index map[string]*models.Item, interactions []models.Interaction, now time.Time) map[string]float64 {
	buckets := make(map[string]float64)
	total := 0.0

	for _, in := range interactions {
		item, ok := index[in.ItemID]
		if !ok {
			continue
		}
		weight := e.weighter.Weight(in, now)
		buckets[item.Category] += weight
		total += weight
	}

	if total <= 0 {
		return map[string]float64{}
	}

	for category, weight := range buckets {
		buckets[category] = weight / total
	}
	return buckets
}
