package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 5 * time.Second

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck probes one dependency. A failing critical check makes the service unhealthy;
// a failing non-critical one only degrades it.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

type HealthService struct {
	checks  []HealthCheck
	details map[string]func() interface{}
	metrics *Metrics
	logger  *logrus.Logger
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Latency     time.Duration          `json:"latency,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func NewHealthService(checks []HealthCheck, metrics *Metrics, logger *logrus.Logger) *HealthService {
	return &HealthService{
		checks:  checks,
		details: make(map[string]func() interface{}),
		metrics: metrics,
		logger:  logger,
	}
}

// AddDetail attaches extra diagnostic output, such as consumer lag, to every health report.
func (s *HealthService) AddDetail(name string, detail func() interface{}) {
	s.details[name] = detail
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start.UTC(),
		Services:  make(map[string]string),
	}

	allCriticalHealthy := true
	for _, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check.Check(checkCtx)
		cancel()

		if err == nil {
			status.Services[check.Name] = StatusHealthy
			s.metrics.UpdateHealthMetrics(check.Name, true)
			continue
		}

		status.Services[check.Name] = StatusUnhealthy
		s.metrics.UpdateHealthMetrics(check.Name, false)
		if check.Critical {
			allCriticalHealthy = false
			status.Critical = append(status.Critical, check.Name)
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", check.Name)
		} else {
			status.NonCritical = append(status.NonCritical, check.Name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", check.Name)
		}
	}
	sort.Strings(status.Critical)
	sort.Strings(status.NonCritical)

	if len(s.details) > 0 {
		status.Details = make(map[string]interface{}, len(s.details))
		for name, detail := range s.details {
			status.Details[name] = detail()
		}
	}

	// Overall status
	switch {
	case !allCriticalHealthy:
		status.Status = StatusUnhealthy
	case len(status.NonCritical) > 0:
		status.Status = StatusDegraded
	default:
		status.Status = StatusHealthy
	}
	status.Latency = time.Since(start)

	return status
}
