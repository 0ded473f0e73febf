package services

import (
	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/scoring"
)

// EngineConfig maps the recommendation settings onto the scoring engine's configuration.
func EngineConfig(cfg config.RecommendationConfig) scoring.Config {
	engineCfg := scoring.Config{
		Taxonomy: scoring.Taxonomy{
			Categories: cfg.Taxonomy.Categories,
			Brands:     cfg.Taxonomy.Brands,
		},
		BaseWeights: scoring.BaseWeights{
			View:     cfg.Weights.View,
			Like:     cfg.Weights.Like,
			CartAdd:  cfg.Weights.Cart,
			Purchase: cfg.Weights.Purchase,
		},
		DecayDays:               cfg.DecayDays,
		ClampFutureInteractions: cfg.ClampFutureInteractions,
		Blend: scoring.BlendWeights{
			Content:  cfg.Hybrid.ContentWeight,
			Affinity: cfg.Hybrid.AffinityWeight,
		},
		Affinity: scoring.AffinityWeights{
			Category:   cfg.Affinity.CategoryWeight,
			Popularity: cfg.Affinity.PopularityWeight,
			Rating:     cfg.Affinity.RatingWeight,
		},
	}

	if len(engineCfg.Taxonomy.Categories) == 0 && len(engineCfg.Taxonomy.Brands) == 0 {
		engineCfg.Taxonomy = scoring.DefaultTaxonomy()
	}

	return engineCfg
}

func NewEngine(cfg config.RecommendationConfig, opts ...scoring.Option) (*scoring.Engine, error) {
	return scoring.NewEngine(EngineConfig(cfg), opts...)
}
