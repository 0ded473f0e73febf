package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/scoring"
)

func TestEngineConfig(t *testing.T) {
	cfg := testRecommendationConfig()
	cfg.ClampFutureInteractions = true
	cfg.Taxonomy = config.TaxonomyConfig{Categories: []string{"Books"}, Brands: []string{"Acme"}}

	engineCfg := EngineConfig(cfg)

	assert.Equal(t, scoring.BaseWeights{View: 1, Like: 3, CartAdd: 5, Purchase: 10}, engineCfg.BaseWeights)
	assert.Equal(t, 30.0, engineCfg.DecayDays)
	assert.True(t, engineCfg.ClampFutureInteractions)
	assert.Equal(t, scoring.BlendWeights{Content: 0.6, Affinity: 0.4}, engineCfg.Blend)
	assert.Equal(t, scoring.AffinityWeights{Category: 0.5, Popularity: 0.3, Rating: 0.2}, engineCfg.Affinity)
	assert.Equal(t, []string{"Books"}, engineCfg.Taxonomy.Categories)
}

func TestEngineConfig_DefaultTaxonomy(t *testing.T) {
	engineCfg := EngineConfig(testRecommendationConfig())
	assert.Equal(t, scoring.DefaultTaxonomy(), engineCfg.Taxonomy)
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	cfg := testRecommendationConfig()
	cfg.Weights.Like = 0.5

	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, scoring.ErrInvalidWeights)

	cfg = testRecommendationConfig()
	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, 15, engine.Vectorizer().Dimensions())
}
