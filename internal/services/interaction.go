package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storerank/internal/interactions"
	"github.com/temcen/storerank/pkg/models"
)

var ErrInvalidInteraction = errors.New("invalid interaction")

// InteractionService validates incoming interactions and either queues them on the event bus
// or applies them immediately when no bus is configured.
type InteractionService struct {
	store     interactions.Store
	cache     RecommendationCache
	publisher EventPublisher
	validator *validator.Validate
	metrics   *Metrics
	logger    *logrus.Logger
	now       func() time.Time
}

func NewInteractionService(
	store interactions.Store,
	cache RecommendationCache,
	publisher EventPublisher,
	metrics *Metrics,
	logger *logrus.Logger,
) *InteractionService {
	return &InteractionService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		validator: validator.New(),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Async reports whether Record queues events instead of applying them.
func (s *InteractionService) Async() bool {
	return s.publisher != nil
}

func (s *InteractionService) Record(ctx context.Context, userID uuid.UUID, req models.InteractionRequest) (*models.InteractionEvent, error) {
	if err := s.validator.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInteraction, err)
	}

	now := s.now().UTC()
	timestamp := now
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	event := models.InteractionEvent{
		EventID: uuid.New(),
		UserID:  userID,
		Interaction: models.Interaction{
			ItemID:    req.ItemID,
			Kind:      models.InteractionKind(req.Kind),
			Timestamp: timestamp,
			Rating:    req.Rating,
		},
		PublishedAt: now,
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to queue interaction: %w", err)
		}
		s.metrics.ObserveInteraction(req.Kind, "queued")
		return &event, nil
	}

	if err := s.Apply(ctx, event); err != nil {
		return nil, err
	}
	s.metrics.ObserveInteraction(req.Kind, "direct")

	return &event, nil
}

// Apply appends the event to the interaction log and drops the user's cached lists. It is the
// handler the Kafka consumer runs for each event.
func (s *InteractionService) Apply(ctx context.Context, event models.InteractionEvent) error {
	if err := s.store.Append(ctx, event.UserID, event.Interaction); err != nil {
		return fmt.Errorf("failed to store interaction: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, event.UserID); err != nil {
			s.logger.WithError(err).WithField("user_id", event.UserID).Warn("Failed to invalidate cached recommendations")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"user_id":  event.UserID,
		"item_id":  event.Interaction.ItemID,
		"kind":     event.Interaction.Kind,
	}).Debug("Interaction applied")

	return nil
}
