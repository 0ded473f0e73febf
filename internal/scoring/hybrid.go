package scoring

import (
	"github.com/temcen/storerank/pkg/models"
)

// Hybrid fuses a 2*limit pool from each scorer. Ties keep content order first,
// then affinity-only items in affinity order.
func (e *Engine) Hybrid(catalog []models.Item, interactions []models.Interaction, limit int) []models.RecommendationScore {
	if limit <= 0 {
		return []models.RecommendationScore{}
	}

	pool := 2 * limit
	content := e.ContentBased(catalog, interactions, pool)
	affinity := e.Collaborative(catalog, interactions, pool)

	positions := make(map[string]int, len(content)+len(affinity))
	combined := make([]models.RecommendationScore, 0, len(content)+len(affinity))

	for _, c := range content {
		positions[c.ItemID] = len(combined)
		combined = append(combined, models.RecommendationScore{
			ItemID: c.ItemID,
			Score:  c.Score * e.blend.Content,
			Reason: c.Reason,
		})
	}

	for _, a := range affinity {
		if pos, ok := positions[a.ItemID]; ok {
			combined[pos].Score += a.Score * e.blend.Affinity
			combined[pos].Reason = ReasonHybrid
			continue
		}
		positions[a.ItemID] = len(combined)
		combined = append(combined, models.RecommendationScore{
			ItemID: a.ItemID,
			Score:  a.Score * e.blend.Affinity,
			Reason: a.Reason,
		})
	}

	return rank(combined, limit)
}
