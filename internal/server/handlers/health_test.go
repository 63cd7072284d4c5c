package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/procoachmastery/website/internal/errors"
)

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(context.Context) error {
	return s.err
}

func TestHealthHandlerHealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("rate_limit_store", stubChecker{})

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, map[string]string{"rate_limit_store": StatusHealthy}, resp.Checks)
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("rate_limit_store", stubChecker{err: errors.New("redis down")})
	manager.RegisterChecker("telemetry", stubChecker{})

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, apperrors.CodeUnavailable, resp.Error.Code)

	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok, "details: %v", resp.Error.Details)
	assert.Equal(t, StatusUnhealthy, checks["rate_limit_store"])
	assert.Equal(t, StatusHealthy, checks["telemetry"])
}

func TestSlowCheckTimesOutAsDegraded(t *testing.T) {
	manager := NewHealthManager("dev")
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	manager.RegisterChecker("slow", HealthCheckFunc(func(context.Context) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	checks := manager.runHealthChecks(ctx)
	assert.Equal(t, StatusTimeout, checks["slow"])
	assert.Equal(t, StatusDegraded, manager.determineOverallStatus(checks))
}

func TestDetermineOverallStatus(t *testing.T) {
	manager := NewHealthManager("dev")
	assert.Equal(t, StatusHealthy, manager.determineOverallStatus(nil))
	assert.Equal(t, StatusDegraded, manager.determineOverallStatus(map[string]string{"a": StatusHealthy, "b": StatusTimeout}))
	assert.Equal(t, StatusUnhealthy, manager.determineOverallStatus(map[string]string{"a": StatusTimeout, "b": StatusUnhealthy}))
}

func TestLivenessIgnoresDependencyChecks(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("rate_limit_store", stubChecker{err: errors.New("redis down")})

	rec := httptest.NewRecorder()
	manager.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckerNames(t *testing.T) {
	manager := NewHealthManager("dev")
	manager.RegisterChecker("telemetry", HealthCheckFunc(func(context.Context) error { return nil }))
	manager.RegisterChecker("identity", stubChecker{})
	manager.RegisterChecker("identity", stubChecker{})

	assert.Equal(t, []string{"identity", "telemetry"}, manager.CheckerNames())
}
