package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"auctionhouse/activity-worker-service/internal/app/activity/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckHandler_HealthCheck_Healthy(t *testing.T) {
	// Arrange
	env := newTestEnv()

	// Act
	rec := env.get("/health")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "healthy",
		"checks": {"mongodb": "healthy"},
		"timestamp": "2025-03-10T12:00:00Z"
	}`, rec.Body.String())
}

func TestHealthCheckHandler_HealthCheck_Unhealthy(t *testing.T) {
	// Arrange
	env := newTestEnv()
	env.pingErr = errors.New("server selection timeout")

	// Act
	rec := env.get("/health")

	// Assert
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp entity.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "unhealthy: server selection timeout", resp.Checks["mongodb"])
}

func TestHealthCheckHandler_Readiness(t *testing.T) {
	// Arrange
	env := newTestEnv()

	// Act
	ready := env.get("/health/readiness")
	env.pingErr = errors.New("down")
	notReady := env.get("/health/readiness")

	// Assert
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Equal(t, "ready", ready.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, notReady.Code)
	assert.Equal(t, "mongodb not ready", notReady.Body.String())
}

func TestHealthCheckHandler_Liveness(t *testing.T) {
	// Arrange
	env := newTestEnv()
	env.pingErr = errors.New("down")

	// Act
	rec := env.get("/health/liveness")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}

func TestRouter_ServesMetrics(t *testing.T) {
	// Arrange
	env := newTestEnv()
	env.get("/health/liveness")

	// Act
	rec := env.get("/metrics")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
