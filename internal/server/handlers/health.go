package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	apperrors "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/metrics"
)

// Check and aggregate statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
	StatusTimeout   = "timeout"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProbeResponse is the body of the liveness, readiness and startup probes.
type ProbeResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthChecker is a dependency that can report its health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckFunc adapts a plain function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthManager runs the registered checks for the health endpoints.
type HealthManager struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	version  string
}

func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]HealthChecker),
		version:  version,
	}
}

// RegisterChecker adds or replaces the check called name.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[name] = checker
}

// CheckerNames lists registered checks in name order.
func (hm *HealthManager) CheckerNames() []string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (hm *HealthManager) snapshot() map[string]HealthChecker {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	checkers := make(map[string]HealthChecker, len(hm.checkers))
	for name, checker := range hm.checkers {
		checkers[name] = checker
	}
	return checkers
}

// runHealthChecks runs every check concurrently. A check still running when
// ctx ends is reported as timeout.
func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	checkers := hm.snapshot()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			status := runCheck(ctx, name, checker)
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	return checks
}

func runCheck(ctx context.Context, name string, checker HealthChecker) string {
	if ctx.Err() != nil {
		return StatusTimeout
	}

	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- checker.CheckHealth(ctx) }()

	select {
	case err := <-done:
		metrics.RecordHealthCheck(name, err == nil, time.Since(start))
		if err != nil {
			return StatusUnhealthy
		}
		return StatusHealthy
	case <-ctx.Done():
		metrics.RecordHealthCheck(name, false, time.Since(start))
		return StatusTimeout
	}
}

// determineOverallStatus folds check results: any failure is unhealthy, a
// timeout or degraded check makes the whole degraded.
func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	overall := StatusHealthy
	for _, status := range checks {
		switch status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded, StatusTimeout:
			overall = StatusDegraded
		}
	}
	return overall
}

// HealthHandler handles GET /health.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks, status := hm.evaluate(r.Context(), 5*time.Second)
	if status == StatusUnhealthy {
		hm.fail(w, r, "", "aggregate health check failed", checks)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Version:   hm.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LivenessHandler reports whether the process is serving at all. It runs no
// dependency checks so a Redis outage never restarts the site.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: StatusHealthy, Timestamp: time.Now().UTC()})
}

func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "ready", 5*time.Second)
}

func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.probe(w, r, "startup", 3*time.Second)
}

func (hm *HealthManager) probe(w http.ResponseWriter, r *http.Request, name string, timeout time.Duration) {
	checks, status := hm.evaluate(r.Context(), timeout)
	if status == StatusUnhealthy {
		hm.fail(w, r, name, name+" probe failed", checks)
		return
	}
	writeJSON(w, http.StatusOK, ProbeResponse{Status: status, Timestamp: time.Now().UTC()})
}

func (hm *HealthManager) evaluate(ctx context.Context, timeout time.Duration) (map[string]string, string) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	checks := hm.runHealthChecks(ctx)
	return checks, hm.determineOverallStatus(checks)
}

func (hm *HealthManager) fail(w http.ResponseWriter, r *http.Request, probe, message string, checks map[string]string) {
	envelope := errors.NewErrorEnvelope(apperrors.CodeUnavailable, message)
	apperrors.RespondWithError(w, r, withHealthDetails(envelope, probe, checks))
}

// withHealthDetails exposes check results in the response details and the
// failing check names in the logged context.
func withHealthDetails(envelope *errors.ErrorEnvelope, probe string, checks map[string]string) *errors.ErrorEnvelope {
	details := map[string]interface{}{"status": StatusUnhealthy, "checks": checks}
	contextData := map[string]interface{}{"status": StatusUnhealthy}
	if probe != "" {
		details["probe"] = probe
		contextData["probe"] = probe
	}

	var failing []string
	for name, result := range checks {
		if result != StatusHealthy {
			failing = append(failing, name)
		}
	}
	if len(failing) > 0 {
		sort.Strings(failing)
		contextData["unhealthy_checks"] = failing
	}

	envelope, _ = envelope.WithDetails(details).WithContext(contextData)
	return envelope
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
