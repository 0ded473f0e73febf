package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Catalog.Source)
	assert.Equal(t, "postgres", cfg.Interactions.Backend)

	rec := cfg.Recommendation
	assert.Equal(t, []string{"Electronics", "Food & Beverages", "Home & Garden", "Pets", "Sports & Outdoors"}, rec.Taxonomy.Categories)
	assert.Len(t, rec.Taxonomy.Brands, 8)
	assert.Equal(t, InteractionWeights{View: 1, Like: 3, Cart: 5, Purchase: 10}, rec.Weights)
	assert.Equal(t, 30.0, rec.DecayDays)
	assert.False(t, rec.ClampFutureInteractions)
	assert.Equal(t, HybridConfig{ContentWeight: 0.6, AffinityWeight: 0.4}, rec.Hybrid)
	assert.Equal(t, AffinityConfig{CategoryWeight: 0.5, PopularityWeight: 0.3, RatingWeight: 0.2}, rec.Affinity)
	assert.Equal(t, 8, rec.DefaultLimit)
	assert.Equal(t, 4, rec.SimilarLimit)
	assert.Equal(t, 30*time.Minute, rec.Caching.RecommendationsTTL)
	assert.Equal(t, 2*time.Second, rec.Timeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("RECOMMENDATION_CLAMP_FUTURE_INTERACTIONS", "true")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Catalog.Source)
	assert.True(t, cfg.Recommendation.ClampFutureInteractions)
	assert.True(t, cfg.UsesPostgres())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
recommendation:
  taxonomy:
    categories: [Books, Music]
    brands: [Indie]
  hybrid:
    content_weight: 0.7
    affinity_weight: 0.3
interactions:
  backend: neo4j
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), content, 0o600))

	v := viper.New()
	v.AddConfigPath(dir)

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"Books", "Music"}, cfg.Recommendation.Taxonomy.Categories)
	assert.Equal(t, []string{"Indie"}, cfg.Recommendation.Taxonomy.Brands)
	assert.Equal(t, 0.7, cfg.Recommendation.Hybrid.ContentWeight)
	assert.Equal(t, "neo4j", cfg.Interactions.Backend)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 10.0, cfg.Recommendation.Weights.Purchase)
}
