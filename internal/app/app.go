package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/config"
	"github.com/temcen/storerank/internal/database"
	"github.com/temcen/storerank/internal/handlers"
	"github.com/temcen/storerank/internal/middleware"
	"github.com/temcen/storerank/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine

	stopConsumer context.CancelFunc
	consumerDone chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize services
	services, err := services.New(cfg, app.logger, db, registry)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = services

	// Initialize handlers
	app.handlers = handlers.New(app.logger, services, registry)

	var limiter middleware.Limiter
	if services.RateLimiter != nil {
		limiter = services.RateLimiter
	}
	app.router = newRouter(cfg, app.logger, app.handlers, limiter)

	if services.EventBus != nil {
		app.startConsumer()
	}

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

// startConsumer applies queued interaction events until Shutdown is called.
func (a *App) startConsumer() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopConsumer = cancel
	a.consumerDone = make(chan struct{})

	go func() {
		defer close(a.consumerDone)
		a.logger.Info("Interaction consumer started")
		err := a.services.EventBus.Consume(ctx, a.services.Interaction.Apply)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.WithError(err).Error("Interaction consumer stopped")
			return
		}
		a.logger.Info("Interaction consumer stopped")
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.stopConsumer != nil {
		a.stopConsumer()
		select {
		case <-a.consumerDone:
		case <-ctx.Done():
			a.logger.Warn("Timed out waiting for interaction consumer")
		}
	}

	if err := a.services.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing services")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func newRouter(cfg *config.Config, logger *logrus.Logger, h *handlers.Handlers, limiter middleware.Limiter) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg))

	router.GET("/health", h.Health.Check)
	router.GET("/health/live", h.Health.Live)

	if cfg.Monitoring.Enabled {
		metricsPath := cfg.Monitoring.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		router.GET(metricsPath, h.Metrics)
	}

	api := router.Group("/api/v1")
	{
		if limiter != nil {
			api.Use(middleware.RateLimit(limiter, logger))
		}

		users := api.Group("/users")
		{
			users.GET("/:userId/recommendations", h.Recommendation.Get)
			users.POST("/:userId/interactions", h.Interaction.Record)
		}

		items := api.Group("/items")
		{
			items.GET("/:itemId/similar", h.Recommendation.Similar)
		}
	}

	return router
}
