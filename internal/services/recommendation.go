package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temcen/storerank/internal/catalog"
	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/interactions"
	"github.com/temcen/storerank/internal/scoring"
	"github.com/temcen/storerank/pkg/models"
)

var ErrUnknownStrategy = errors.New("unknown recommendation strategy")

type Strategy string

const (
	StrategyHybrid        Strategy = "hybrid"
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyPopular       Strategy = "popular"
)

// ParseStrategy accepts the strategy names case-insensitively; empty means hybrid.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case "", StrategyHybrid:
		return StrategyHybrid, nil
	case StrategyContent:
		return StrategyContent, nil
	case StrategyCollaborative:
		return StrategyCollaborative, nil
	case StrategyPopular:
		return StrategyPopular, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, value)
	}
}

type RecommendationRequest struct {
	UserID   uuid.UUID
	Strategy Strategy
	Limit    int
}

type RecommendationResult struct {
	UserID          uuid.UUID
	Strategy        Strategy
	Recommendations []models.RecommendationScore
	GeneratedAt     time.Time
	CacheHit        bool
}

type SimilarResult struct {
	SeedItemID      string
	SeedFound       bool
	Recommendations []models.RecommendationScore
	GeneratedAt     time.Time
}

// RecommendationService loads a catalog snapshot and the user's interaction log, runs the
// requested scorer and caches the ranked list.
type RecommendationService struct {
	engine       *scoring.Engine
	catalog      catalog.Source
	interactions interactions.Store
	cache        RecommendationCache
	metrics      *Metrics
	config       config.RecommendationConfig
	logger       *logrus.Logger
	now          func() time.Time
}

func NewRecommendationService(
	engine *scoring.Engine,
	catalogSource catalog.Source,
	store interactions.Store,
	cache RecommendationCache,
	metrics *Metrics,
	cfg config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		engine:       engine,
		catalog:      catalogSource,
		interactions: store,
		cache:        cache,
		metrics:      metrics,
		config:       cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	start := time.Now()

	strategy, err := ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, err
	}
	limit := s.clampLimit(req.Limit, s.config.DefaultLimit)

	result := &RecommendationResult{
		UserID:   req.UserID,
		Strategy: strategy,
	}

	var cacheVersion int64
	if s.cachingEnabled() {
		recs, version, hit := s.cache.Get(ctx, req.UserID, string(strategy), limit)
		cacheVersion = version
		s.metrics.ObserveCacheLookup(hit)
		if hit {
			result.Recommendations = recs
			result.GeneratedAt = s.now().UTC()
			result.CacheHit = true
			s.metrics.ObserveRecommendation(string(strategy), "cache_hit", time.Since(start))
			return result, nil
		}
	}

	items, userInteractions, err := s.load(ctx, req.UserID)
	if err != nil {
		s.metrics.ObserveRecommendation(string(strategy), "error", time.Since(start))
		return nil, err
	}

	result.Recommendations = s.score(strategy, items, userInteractions, limit)
	result.GeneratedAt = s.now().UTC()

	if s.cachingEnabled() {
		s.cache.Set(ctx, req.UserID, string(strategy), limit, cacheVersion, result.Recommendations)
	}

	s.metrics.ObserveRecommendation(string(strategy), "computed", time.Since(start))
	s.logger.WithFields(logrus.Fields{
		"user_id":      req.UserID,
		"strategy":     strategy,
		"limit":        limit,
		"interactions": len(userInteractions),
		"returned":     len(result.Recommendations),
		"duration":     time.Since(start),
	}).Debug("Recommendations generated")

	return result, nil
}

func (s *RecommendationService) Similar(ctx context.Context, itemID string, limit int) (*SimilarResult, error) {
	limit = s.clampLimit(limit, s.config.SimilarLimit)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := s.catalog.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	result := &SimilarResult{
		SeedItemID:      itemID,
		Recommendations: []models.RecommendationScore{},
		GeneratedAt:     s.now().UTC(),
	}
	for _, item := range items {
		if item.ID == itemID {
			result.SeedFound = true
			break
		}
	}
	if result.SeedFound {
		result.Recommendations = s.engine.SimilarTo(items, itemID, limit)
	}

	return result, nil
}

// load fetches the catalog, the user's recent interactions and their full item history
// concurrently under the request timeout. Items from the history that fell out of the recent
// window are dropped from the returned catalog so they are never recommended back.
func (s *RecommendationService) load(ctx context.Context, userID uuid.UUID) ([]models.Item, []models.Interaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		items            []models.Item
		userInteractions []models.Interaction
		history          []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if items, err = s.catalog.Items(gctx); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if userInteractions, err = s.interactions.ForUser(gctx, userID); err != nil {
			return fmt.Errorf("failed to load interactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if history, err = s.interactions.InteractedItems(gctx, userID); err != nil {
			return fmt.Errorf("failed to load interaction history: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return withoutOlderHistory(items, userInteractions, history), userInteractions, nil
}

// withoutOlderHistory removes items the user interacted with outside the recent log. Items in the
// recent log stay, since the scorers need them to build preferences and exclude them anyway.
func withoutOlderHistory(items []models.Item, recent []models.Interaction, history []string) []models.Item {
	if len(history) == 0 {
		return items
	}

	inRecent := make(map[string]struct{}, len(recent))
	for _, interaction := range recent {
		inRecent[interaction.ItemID] = struct{}{}
	}
	older := make(map[string]struct{}, len(history))
	for _, itemID := range history {
		if _, ok := inRecent[itemID]; !ok {
			older[itemID] = struct{}{}
		}
	}
	if len(older) == 0 {
		return items
	}

	candidates := make([]models.Item, 0, len(items))
	for _, item := range items {
		if _, ok := older[item.ID]; !ok {
			candidates = append(candidates, item)
		}
	}
	return candidates
}

func (s *RecommendationService) score(strategy Strategy, items []models.Item, userInteractions []models.Interaction, limit int) []models.RecommendationScore {
	switch strategy {
	case StrategyContent:
		return s.engine.ContentBased(items, userInteractions, limit)
	case StrategyCollaborative:
		return s.engine.Collaborative(items, userInteractions, limit)
	case StrategyPopular:
		return s.engine.Popular(items, userInteractions, limit)
	default:
		return s.engine.Hybrid(items, userInteractions, limit)
	}
}

func (s *RecommendationService) clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if s.config.MaxLimit > 0 && limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}
	return limit
}

func (s *RecommendationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func (s *RecommendationService) cachingEnabled() bool {
	return s.cache != nil && s.config.Caching.Enabled
}
