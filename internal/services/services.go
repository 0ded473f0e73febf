package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/cache"
	"github.com/temcen/storerank/internal/catalog"
	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/database"
	"github.com/temcen/storerank/internal/interactions"
	"github.com/temcen/storerank/internal/messaging"
	"github.com/temcen/storerank/internal/scoring"
)

type Services struct {
	Recommendation *RecommendationService
	Interaction    *InteractionService
	Health         *HealthService
	Metrics        *Metrics
	Catalog        catalog.Source
	EventBus       *messaging.EventBus
	RateLimiter    *cache.RateLimiter
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, registerer prometheus.Registerer) (*Services, error) {
	metrics := NewMetrics(registerer, logger)

	catalogSource, err := newCatalogSource(cfg, logger, db)
	if err != nil {
		return nil, err
	}

	filter, err := catalog.NewFilter(cfg.Catalog.Filter, logger)
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(cfg.Recommendation, scoring.WithEligibility(filter.Allows))
	if err != nil {
		return nil, fmt.Errorf("failed to build scoring engine: %w", err)
	}

	store, err := newInteractionStore(cfg, logger, db)
	if err != nil {
		return nil, err
	}

	// Leave the interface nil, not a typed nil pointer, when caching is off.
	var recommendationCache RecommendationCache
	if db.Redis != nil && cfg.Recommendation.Caching.Enabled {
		recommendationCache = cache.NewRecommendationCache(
			db.Redis,
			cfg.Recommendation.Caching.KeyPrefix,
			cfg.Recommendation.Caching.RecommendationsTTL,
			logger,
		)
	}

	var (
		eventBus  *messaging.EventBus
		publisher EventPublisher
	)
	if cfg.Kafka.Enabled {
		eventBus = messaging.NewEventBus(cfg, logger)
		publisher = eventBus
	}

	s := &Services{
		Recommendation: NewRecommendationService(engine, catalogSource, store, recommendationCache, metrics, cfg.Recommendation, logger),
		Interaction:    NewInteractionService(store, recommendationCache, publisher, metrics, logger),
		Health:         NewHealthService(healthChecks(cfg, db, catalogSource), metrics, logger),
		Metrics:        metrics,
		Catalog:        catalogSource,
		EventBus:       eventBus,
	}
	if db.Redis != nil && cfg.Security.RateLimit.Enabled {
		s.RateLimiter = cache.NewRateLimiter(
			db.Redis,
			cfg.Recommendation.Caching.KeyPrefix,
			cfg.Security.RateLimit.Requests,
			cfg.Security.RateLimit.Window,
			logger,
		)
	}
	if eventBus != nil {
		s.Health.AddDetail("kafka", func() interface{} { return eventBus.Metrics() })
	}

	logger.WithFields(logrus.Fields{
		"catalog_source":      cfg.Catalog.Source,
		"catalog_filter":      filter.Expression(),
		"interaction_backend": cfg.Interactions.Backend,
		"cache_enabled":       recommendationCache != nil,
		"kafka_enabled":       cfg.Kafka.Enabled,
		"rate_limit_enabled":  s.RateLimiter != nil,
	}).Info("Services initialized")

	return s, nil
}

func (s *Services) Close() error {
	if s.EventBus != nil {
		return s.EventBus.Close()
	}
	return nil
}

func newCatalogSource(cfg *config.Config, logger *logrus.Logger, db *database.Database) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case "file":
		return catalog.NewFileSource(cfg.Catalog.Path, logger)
	case "postgres":
		if db.PG == nil {
			return nil, fmt.Errorf("catalog source postgres requires a database connection")
		}
		return catalog.NewPostgresSource(db.PG, logger), nil
	default:
		return nil, fmt.Errorf("unsupported catalog source %q", cfg.Catalog.Source)
	}
}

func newInteractionStore(cfg *config.Config, logger *logrus.Logger, db *database.Database) (interactions.Store, error) {
	switch cfg.Interactions.Backend {
	case "postgres":
		if db.PG == nil {
			return nil, fmt.Errorf("interaction backend postgres requires a database connection")
		}
		return interactions.NewPostgresStore(db.PG, cfg.Interactions.Limit, logger), nil
	case "neo4j":
		if db.Neo4j == nil {
			return nil, fmt.Errorf("interaction backend neo4j requires a Neo4j driver")
		}
		return interactions.NewNeo4jStore(db.Neo4j, cfg.Interactions.Limit, logger), nil
	default:
		return nil, fmt.Errorf("unsupported interaction backend %q", cfg.Interactions.Backend)
	}
}

func healthChecks(cfg *config.Config, db *database.Database, catalogSource catalog.Source) []HealthCheck {
	checks := []HealthCheck{
		{
			Name:     "catalog",
			Critical: true,
			Check: func(ctx context.Context) error {
				_, err := catalogSource.Items(ctx)
				return err
			},
		},
	}

	if db.PG != nil {
		checks = append(checks, HealthCheck{Name: "postgresql", Critical: true, Check: db.PG.Ping})
	}
	if db.Neo4j != nil {
		checks = append(checks, HealthCheck{
			Name:     "neo4j",
			Critical: cfg.Interactions.Backend == "neo4j",
			Check:    db.Neo4j.VerifyConnectivity,
		})
	}
	if db.Redis != nil {
		checks = append(checks, HealthCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return db.Redis.Ping(ctx).Err()
			},
		})
	}

	return checks
}
