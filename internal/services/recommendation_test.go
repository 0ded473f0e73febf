package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/scoring"
	"github.com/temcen/storerank/pkg/models"
)

func testRecommendationConfig() config.RecommendationConfig {
	return config.RecommendationConfig{
		Weights:      config.InteractionWeights{View: 1, Like: 3, Cart: 5, Purchase: 10},
		DecayDays:    30,
		Hybrid:       config.HybridConfig{ContentWeight: 0.6, AffinityWeight: 0.4},
		Affinity:     config.AffinityConfig{CategoryWeight: 0.5, PopularityWeight: 0.3, RatingWeight: 0.2},
		DefaultLimit: 8,
		SimilarLimit: 4,
		MaxLimit:     3,
		Timeout:      time.Second,
		Caching:      config.CachingConfig{Enabled: true, RecommendationsTTL: 30 * time.Minute},
	}
}

func newTestRecommendationService(t *testing.T, catalogSource *MockCatalog, store *MockStore, cache RecommendationCache) (*RecommendationService, *Metrics) {
	t.Helper()
	cfg := testRecommendationConfig()
	engine, err := NewEngine(cfg, scoring.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	metrics := testMetrics()
	s := NewRecommendationService(engine, catalogSource, store, cache, metrics, cfg, testLogger())
	s.now = func() time.Time { return testNow }
	return s, metrics
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyHybrid, false},
		{"hybrid", StrategyHybrid, false},
		{"Content", StrategyContent, false},
		{" collaborative ", StrategyCollaborative, false},
		{"popular", StrategyPopular, false},
		{"trending", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendationService_RecommendComputesAndCaches(t *testing.T) {
	catalogSource := &MockCatalog{}
	store := &MockStore{}
	cache := &MockCache{}
	userID := uuid.New()

	catalogSource.On("Items", mock.Anything).Return(testCatalog(), nil)
	store.On("ForUser", mock.Anything, userID).Return([]models.Interaction{
		{ItemID: "p1", Kind: models.InteractionPurchase, Timestamp: testNow.Add(-24 * time.Hour)},
	}, nil)
	store.On("InteractedItems", mock.Anything, userID).Return([]string{"p1"}, nil)
	// The list is stored under the version seen at lookup, not whatever is current at Set.
	cache.On("Get", mock.Anything, userID, "content", 3).Return(nil, int64(4), false)
	cache.On("Set", mock.Anything, userID, "content", 3, int64(4), mock.Anything).Return()

	s, metrics := newTestRecommendationService(t, catalogSource, store, cache)
	result, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID, Strategy: StrategyContent})
	require.NoError(t, err)

	assert.False(t, result.CacheHit)
	assert.Equal(t, StrategyContent, result.Strategy)
	assert.Equal(t, testNow, result.GeneratedAt)
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "p2", result.Recommendations[0].ItemID)
	for _, rec := range result.Recommendations {
		assert.NotEqual(t, "p1", rec.ItemID)
		assert.Equal(t, scoring.ReasonContent, rec.Reason)
	}

	cache.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recommendationRequests.WithLabelValues("content", "computed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestRecommendationService_RecommendCacheHit(t *testing.T) {
	catalogSource := &MockCatalog{}
	store := &MockStore{}
	cache := &MockCache{}
	userID := uuid.New()
	cached := []models.RecommendationScore{{ItemID: "p3", Score: 1.2, Reason: scoring.ReasonHybrid}}

	cache.On("Get", mock.Anything, userID, "hybrid", 2).Return(cached, int64(0), true)

	s, metrics := newTestRecommendationService(t, catalogSource, store, cache)
	result, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID, Limit: 2})
	require.NoError(t, err)

	assert.True(t, result.CacheHit)
	assert.Equal(t, cached, result.Recommendations)
	catalogSource.AssertNotCalled(t, "Items", mock.Anything)
	store.AssertNotCalled(t, "ForUser", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
}

func TestRecommendationService_PopularWithoutCache(t *testing.T) {
	catalogSource := &MockCatalog{}
	store := &MockStore{}
	userID := uuid.New()

	catalogSource.On("Items", mock.Anything).Return(testCatalog(), nil)
	store.On("ForUser", mock.Anything, userID).Return([]models.Interaction{}, nil)
	store.On("InteractedItems", mock.Anything, userID).Return([]string{}, nil)

	s, _ := newTestRecommendationService(t, catalogSource, store, nil)
	result, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID, Strategy: StrategyPopular, Limit: 50})
	require.NoError(t, err)

	// limit is capped at max_limit
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, []string{"p3", "p1", "p2"}, []string{
		result.Recommendations[0].ItemID,
		result.Recommendations[1].ItemID,
		result.Recommendations[2].ItemID,
	})
	assert.Equal(t, scoring.ReasonPopular, result.Recommendations[0].Reason)
}

func TestRecommendationService_RecommendErrors(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		s, _ := newTestRecommendationService(t, &MockCatalog{}, &MockStore{}, nil)
		_, err := s.Recommend(context.Background(), RecommendationRequest{UserID: uuid.New(), Strategy: "trending"})
		assert.ErrorIs(t, err, ErrUnknownStrategy)
	})

	t.Run("catalog failure", func(t *testing.T) {
		catalogSource := &MockCatalog{}
		store := &MockStore{}
		userID := uuid.New()
		catalogSource.On("Items", mock.Anything).Return(nil, errors.New("catalog offline"))
		store.On("ForUser", mock.Anything, userID).Return([]models.Interaction{}, nil).Maybe()
		store.On("InteractedItems", mock.Anything, userID).Return([]string{}, nil).Maybe()

		s, metrics := newTestRecommendationService(t, catalogSource, store, nil)
		_, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog offline")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recommendationRequests.WithLabelValues("hybrid", "error")))
	})

	t.Run("interaction failure", func(t *testing.T) {
		catalogSource := &MockCatalog{}
		store := &MockStore{}
		userID := uuid.New()
		catalogSource.On("Items", mock.Anything).Return(testCatalog(), nil).Maybe()
		store.On("ForUser", mock.Anything, userID).Return(nil, errors.New("store offline"))
		store.On("InteractedItems", mock.Anything, userID).Return([]string{}, nil).Maybe()

		s, _ := newTestRecommendationService(t, catalogSource, store, nil)
		_, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store offline")
	})
}

func TestRecommendationService_ExcludesItemsBeyondRecentLog(t *testing.T) {
	catalogSource := &MockCatalog{}
	store := &MockStore{}
	userID := uuid.New()

	catalogSource.On("Items", mock.Anything).Return(testCatalog(), nil)
	store.On("ForUser", mock.Anything, userID).Return([]models.Interaction{
		{ItemID: "p1", Kind: models.InteractionPurchase, Timestamp: testNow.Add(-time.Hour)},
	}, nil)
	// p2 was bought long ago and no longer fits in the recent log.
	store.On("InteractedItems", mock.Anything, userID).Return([]string{"p1", "p2"}, nil)

	s, _ := newTestRecommendationService(t, catalogSource, store, nil)

	for _, strategy := range []Strategy{StrategyHybrid, StrategyContent, StrategyCollaborative, StrategyPopular} {
		t.Run(string(strategy), func(t *testing.T) {
			result, err := s.Recommend(context.Background(), RecommendationRequest{UserID: userID, Strategy: strategy})
			require.NoError(t, err)
			for _, rec := range result.Recommendations {
				assert.NotEqual(t, "p1", rec.ItemID)
				assert.NotEqual(t, "p2", rec.ItemID)
			}
		})
	}
}

func TestWithoutOlderHistory(t *testing.T) {
	items := testCatalog()
	recent := []models.Interaction{{ItemID: "p1", Kind: models.InteractionView, Timestamp: testNow}}

	tests := []struct {
		name    string
		history []string
		want    []string
	}{
		{"no history", nil, []string{"p1", "p2", "p3", "p4"}},
		{"history inside recent log", []string{"p1"}, []string{"p1", "p2", "p3", "p4"}},
		{"older items dropped", []string{"p1", "p3", "p4"}, []string{"p1", "p2"}},
		{"unknown ids ignored", []string{"gone"}, []string{"p1", "p2", "p3", "p4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, item := range withoutOlderHistory(items, recent, tt.history) {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendationService_Similar(t *testing.T) {
	catalogSource := &MockCatalog{}
	catalogSource.On("Items", mock.Anything).Return(testCatalog(), nil)

	s, _ := newTestRecommendationService(t, catalogSource, &MockStore{}, nil)

	result, err := s.Similar(context.Background(), "p1", 0)
	require.NoError(t, err)
	assert.True(t, result.SeedFound)
	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "p2", result.Recommendations[0].ItemID)
	for _, rec := range result.Recommendations {
		assert.NotEqual(t, "p1", rec.ItemID)
		assert.Equal(t, scoring.ReasonSimilar, rec.Reason)
	}

	result, err = s.Similar(context.Background(), "missing", 2)
	require.NoError(t, err)
	assert.False(t, result.SeedFound)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
}
