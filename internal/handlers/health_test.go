package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storerank/internal/services"
)

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	failing := func(context.Context) error { return errors.New("down") }
	passing := func(context.Context) error { return nil }

	tests := []struct {
		name           string
		checks         []services.HealthCheck
		expectedStatus int
		expectedState  string
	}{
		{"healthy", []services.HealthCheck{{Name: "catalog", Critical: true, Check: passing}}, http.StatusOK, "healthy"},
		{"degraded", []services.HealthCheck{{Name: "catalog", Critical: true, Check: passing}, {Name: "redis", Check: failing}}, http.StatusOK, "degraded"},
		{"unhealthy", []services.HealthCheck{{Name: "catalog", Critical: true, Check: failing}}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := services.NewMetrics(prometheus.NewRegistry(), testLogger())
			handler := NewHealthHandler(testLogger(), services.NewHealthService(tt.checks, metrics, testLogger()))

			router := gin.New()
			router.GET("/health", handler.Check)

			req, _ := http.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics := services.NewMetrics(registry, testLogger())
	metrics.ObserveCacheLookup(true)

	router := gin.New()
	router.GET("/metrics", NewMetricsHandler(registry))

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `recommendation_cache_lookups_total{result="hit"} 1`))
}

func TestHealthHandler_Live(t *testing.T) {
	gin.SetMode(gin.TestMode)

	failing := func(context.Context) error { return errors.New("down") }
	metrics := services.NewMetrics(prometheus.NewRegistry(), testLogger())
	handler := NewHealthHandler(testLogger(), services.NewHealthService(
		[]services.HealthCheck{{Name: "catalog", Critical: true, Check: failing}}, metrics, testLogger()))

	router := gin.New()
	router.GET("/health/live", handler.Live)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
