package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temcen/storerank/pkg/models"
)

var testNow = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	engine, err := NewEngine(DefaultConfig(), opts...)
	require.NoError(t, err)
	return engine
}

func daysAgo(days float64) time.Time {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func storeCatalog() []models.Item {
	return []models.Item{
		{ID: "p1", Name: "Wireless Headphones", Price: 199.99, Rating: 4.5, ReviewCount: 1200, Category: "Electronics", Brand: "AudioTech", InStock: true},
		{ID: "p2", Name: "Fitness Tracker", Price: 129.99, Rating: 4.2, ReviewCount: 800, Category: "Electronics", Brand: "FitTech", InStock: true},
		{ID: "p3", Name: "Smart Speaker", Price: 89.99, Rating: 4.0, ReviewCount: 650, Category: "Electronics", Brand: "TechPro", InStock: false},
		{ID: "p4", Name: "Espresso Machine", Price: 79.99, Rating: 4.6, ReviewCount: 430, Category: "Food & Beverages", Brand: "BrewMaster", InStock: true},
		{ID: "p5", Name: "Throw Blanket", Price: 49.99, Rating: 4.8, ReviewCount: 2100, Category: "Home & Garden", Brand: "ComfortHome", InStock: true},
		{ID: "p6", Name: "Orthopedic Dog Bed", Price: 59.99, Rating: 4.7, ReviewCount: 940, Category: "Pets", Brand: "PetComfort", InStock: true},
		{ID: "p7", Name: "Mirrorless Camera", Price: 899.00, Rating: 4.4, ReviewCount: 310, Category: "Electronics", Brand: "PhotoPro", InStock: true},
		{ID: "p8", Name: "Trail Running Shoes", Price: 119.00, Rating: 4.3, ReviewCount: 760, Category: "Sports & Outdoors", Brand: "RunFast", InStock: true},
		{ID: "p9", Name: "Smart Thermostat", Price: 149.00, Rating: 4.1, ReviewCount: 520, Category: "Home & Garden", Brand: "TechPro", InStock: true},
		{ID: "p10", Name: "Cold Brew Kit", Price: 34.50, Rating: 4.4, ReviewCount: 210, Category: "Food & Beverages", Brand: "BrewMaster", InStock: true},
		{ID: "p11", Name: "Yoga Mat", Price: 29.99, Rating: 4.5, ReviewCount: 1500, Category: "Sports & Outdoors", Brand: "FitTech", InStock: true},
	}
}

func ids(scores []models.RecommendationScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.ItemID
	}
	return out
}

func requireDescending(t *testing.T, scores []models.RecommendationScore) {
	t.Helper()
	for i := 1; i < len(scores); i++ {
		require.GreaterOrEqual(t, scores[i-1].Score, scores[i].Score, "position %d", i)
	}
}
