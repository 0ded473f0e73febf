package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/temcen/storerank/pkg/models"
)

const (
	ReasonContent  = "Based on your preferences"
	ReasonPopular  = "Popular products"
	ReasonAffinity = "Popular in your categories"
	ReasonHybrid   = "Based on preferences and popularity"
	ReasonSimilar  = "Similar products"
)

// BlendWeights controls how the hybrid combiner fuses its two sources.
type BlendWeights struct {
	Content  float64
	Affinity float64
}

// AffinityWeights controls the affinity score:
// Category*affinity + Popularity*ln(reviews+1)/10 + Rating*rating/5.
type AffinityWeights struct {
	Category   float64
	Popularity float64
	Rating     float64
}

type Config struct {
	Taxonomy                Taxonomy
	BaseWeights             BaseWeights
	DecayDays               float64
	ClampFutureInteractions bool
	Blend                   BlendWeights
	Affinity                AffinityWeights
}

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []string{"Electronics", "Food & Beverages", "Home & Garden", "Pets", "Sports & Outdoors"},
		Brands:     []string{"AudioTech", "FitTech", "TechPro", "BrewMaster", "ComfortHome", "PetComfort", "PhotoPro", "RunFast"},
	}
}

func DefaultConfig() Config {
	return Config{
		Taxonomy:    DefaultTaxonomy(),
		BaseWeights: DefaultBaseWeights(),
		DecayDays:   30,
		Blend:       BlendWeights{Content: 0.6, Affinity: 0.4},
		Affinity:    AffinityWeights{Category: 0.5, Popularity: 0.3, Rating: 0.2},
	}
}

type Option func(*Engine)

// WithClock replaces time.Now; the clock is read once per scoring call.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithEligibility restricts which catalog items may be returned as candidates.
// Ineligible items still count when building the user's preferences.
func WithEligibility(eligible func(models.Item) bool) Option {
	return func(e *Engine) {
		e.eligible = eligible
	}
}

// Engine holds only immutable configuration; every method is safe for concurrent use.
type Engine struct {
	vectorizer *Vectorizer
	weighter   *Weighter
	blend      BlendWeights
	affinity   AffinityWeights
	now        func() time.Time
	eligible   func(models.Item) bool
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	weighter, err := NewWeighter(cfg.BaseWeights, cfg.DecayDays, cfg.ClampFutureInteractions)
	if err != nil {
		return nil, err
	}
	if cfg.Blend.Content < 0 || cfg.Blend.Affinity < 0 {
		return nil, fmt.Errorf("%w: blend weights must be non-negative", ErrInvalidWeights)
	}
	if cfg.Affinity.Category < 0 || cfg.Affinity.Popularity < 0 || cfg.Affinity.Rating < 0 {
		return nil, fmt.Errorf("%w: affinity weights must be non-negative", ErrInvalidWeights)
	}

	e := &Engine{
		vectorizer: NewVectorizer(cfg.Taxonomy),
		weighter:   weighter,
		blend:      cfg.Blend,
		affinity:   cfg.Affinity,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Vectorizer() *Vectorizer {
	return e.vectorizer
}

func (e *Engine) Weighter() *Weighter {
	return e.weighter
}

func (e *Engine) isEligible(item models.Item) bool {
	return e.eligible == nil || e.eligible(item)
}

// Popular ranks by rating * ln(reviewCount+1). It is the content scorer's answer for a user
// with no interactions at all.
func (e *Engine) Popular(catalog []models.Item, interactions []models.Interaction, limit int) []models.RecommendationScore {
	if limit <= 0 {
		return []models.RecommendationScore{}
	}

	excluded := interactedItems(interactions)
	scores := make([]models.RecommendationScore, 0, len(catalog))
	for _, item := range catalog {
		if _, seen := excluded[item.ID]; seen || !e.isEligible(item) {
			continue
		}
		scores = append(scores, models.RecommendationScore{
			ItemID: item.ID,
			Score:  item.Rating * logReviews(item),
			Reason: ReasonPopular,
		})
	}

	return rank(scores, limit)
}

func interactedItems(interactions []models.Interaction) map[string]struct{} {
	seen := make(map[string]struct{}, len(interactions))
	for _, in := range interactions {
		seen[in.ItemID] = struct{}{}
	}
	return seen
}

// indexCatalog keeps the first item for each ID. Duplicate IDs are rejected by catalog sources.
func indexCatalog(catalog []models.Item) map[string]*models.Item {
	index := make(map[string]*models.Item, len(catalog))
	for i := range catalog {
		if _, exists := index[catalog[i].ID]; !exists {
			index[catalog[i].ID] = &catalog[i]
		}
	}
	return index
}

func logReviews(item models.Item) float64 {
	count := item.ReviewCount
	if count < 0 {
		count = 0
	}
	return math.Log(float64(count) + 1)
}

// rank sorts by score descending, keeping input order for ties, and truncates to limit.
func rank(scores []models.RecommendationScore, limit int) []models.RecommendationScore {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}
