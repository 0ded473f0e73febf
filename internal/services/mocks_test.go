package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/storerank/pkg/models"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Items(ctx context.Context) ([]models.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ForUser(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Interaction), args.Error(1)
}

func (m *MockStore) InteractedItems(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Append(ctx context.Context, userID uuid.UUID, interaction models.Interaction) error {
	args := m.Called(ctx, userID, interaction)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, userID uuid.UUID, strategy string, limit int) ([]models.RecommendationScore, int64, bool) {
	args := m.Called(ctx, userID, strategy, limit)
	version := args.Get(1).(int64)
	if args.Get(0) == nil {
		return nil, version, args.Bool(2)
	}
	return args.Get(0).([]models.RecommendationScore), version, args.Bool(2)
}

func (m *MockCache) Set(ctx context.Context, userID uuid.UUID, strategy string, limit int, version int64, recs []models.RecommendationScore) {
	m.Called(ctx, userID, strategy, limit, version, recs)
}

func (m *MockCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.InteractionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func testMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry(), testLogger())
}

func testCatalog() []models.Item {
	return []models.Item{
		{ID: "p1", Name: "Wireless Headphones", Price: 199.99, Rating: 4.5, ReviewCount: 1250, Category: "Electronics", Brand: "AudioTech", InStock: true},
		{ID: "p2", Name: "Smart Watch", Price: 299.0, Rating: 4.3, ReviewCount: 890, Category: "Electronics", Brand: "FitTech", InStock: true},
		{ID: "p3", Name: "Memory Foam Pillow", Price: 89.0, Rating: 4.6, ReviewCount: 2100, Category: "Home & Garden", Brand: "ComfortHome", InStock: true},
		{ID: "p4", Name: "Orthopedic Dog Bed", Price: 59.0, Rating: 4.2, ReviewCount: 300, Category: "Pets", Brand: "PetComfort", InStock: false},
	}
}
