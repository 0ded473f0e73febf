package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Metrics holds the service-level Prometheus collectors.
type Metrics struct {
	recommendationRequests *prometheus.CounterVec
	recommendationLatency  *prometheus.HistogramVec
	cacheLookups           *prometheus.CounterVec
	interactionsRecorded   *prometheus.CounterVec
	healthCheckStatus      *prometheus.GaugeVec
	lastHealthCheck        *prometheus.GaugeVec
}

func NewMetrics(registerer prometheus.Registerer, logger *logrus.Logger) *Metrics {
	m := &Metrics{
		recommendationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		}, []string{"strategy", "outcome"}),

		recommendationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "Recommendation request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
		}, []string{"strategy"}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_cache_lookups_total",
			Help: "Recommendation cache lookups by result",
		}, []string{"result"}),

		interactionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interactions_recorded_total",
			Help: "Interactions accepted by kind and delivery path",
		}, []string{"kind", "path"}),

		healthCheckStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "health_check_status",
			Help: "Health check status (1 = healthy, 0 = unhealthy)",
		}, []string{"service"}),

		lastHealthCheck: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "health_check_timestamp",
			Help: "Timestamp of last health check",
		}, []string{"service"}),
	}

	collectors := map[string]prometheus.Collector{
		"recommendation_requests_total":      m.recommendationRequests,
		"recommendation_latency_seconds":     m.recommendationLatency,
		"recommendation_cache_lookups_total": m.cacheLookups,
		"interactions_recorded_total":        m.interactionsRecorded,
		"health_check_status":                m.healthCheckStatus,
		"health_check_timestamp":             m.lastHealthCheck,
	}

	// Register metrics with error handling - ignore if already registered
	for name, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warnf("Failed to register %s metric", name)
			}
		}
	}

	return m
}

func (m *Metrics) ObserveRecommendation(strategy, outcome string, elapsed time.Duration) {
	m.recommendationRequests.WithLabelValues(strategy, outcome).Inc()
	m.recommendationLatency.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) ObserveInteraction(kind, path string) {
	m.interactionsRecorded.WithLabelValues(kind, path).Inc()
}

// UpdateHealthMetrics updates health check metrics
func (m *Metrics) UpdateHealthMetrics(serviceName string, healthy bool) {
	if healthy {
		m.healthCheckStatus.WithLabelValues(serviceName).Set(1)
	} else {
		m.healthCheckStatus.WithLabelValues(serviceName).Set(0)
	}
	m.lastHealthCheck.WithLabelValues(serviceName).Set(float64(time.Now().Unix()))
}
