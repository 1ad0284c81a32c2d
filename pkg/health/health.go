// Package health serves liveness and readiness probes for a running
// simulation and its telemetry listener.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// Detailer is implemented by checks that report extra information whether
// or not they pass.
type Detailer interface {
	Detail() string
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     deadlock.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a health check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// CheckHealth executes all registered health checks. The overall status is
// "healthy" only if every check passes.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	checks := make([]HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for _, check := range checks {
		component := ComponentHealth{Status: "healthy"}
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			component.Status = "unhealthy"
			component.Message = err.Error()
		}
		if d, ok := check.(Detailer); ok {
			component.Detail = d.Detail()
		}
		status.Checks[check.Name()] = component
	}

	return status
}

// LivenessHandler returns 200 OK while the process can serve requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 200 OK, or 503 Service
// Unavailable if any of them fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(health)
}

// Register mounts /healthz and /readyz on mux.
func (hc *HealthChecker) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", hc.LivenessHandler)
	mux.HandleFunc("/readyz", hc.ReadinessHandler)
}

// SimulationHealthCheck fails when the frame loop stops advancing.
type SimulationHealthCheck struct {
	ticks      func() uint64
	stall      time.Duration
	now        func() time.Time
	mu         deadlock.Mutex
	lastTick   uint64
	lastChange time.Time
}

// NewSimulationHealthCheck reports unhealthy when ticks has not changed for
// longer than stall.
func NewSimulationHealthCheck(ticks func() uint64, stall time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		ticks:      ticks,
		stall:      stall,
		now:        time.Now,
		lastTick:   ticks(),
		lastChange: time.Now(),
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the tick counter moved recently.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if t := s.ticks(); t != s.lastTick {
		s.lastTick = t
		s.lastChange = now
		return nil
	}
	if idle := now.Sub(s.lastChange); idle > s.stall {
		return fmt.Errorf("simulation loop stalled for %v at tick %d", idle.Round(time.Millisecond), s.lastTick)
	}
	return nil
}

// TelemetryHealthCheck implements HealthCheck for the telemetry listener.
type TelemetryHealthCheck struct {
	listenerAddr func() string
	openBreakers func() int
}

// NewTelemetryHealthCheck creates a health check for the telemetry
// listener. openBreakers may be nil.
func NewTelemetryHealthCheck(listenerAddr func() string, openBreakers func() int) *TelemetryHealthCheck {
	return &TelemetryHealthCheck{
		listenerAddr: listenerAddr,
		openBreakers: openBreakers,
	}
}

// Name returns the name of this health check.
func (n *TelemetryHealthCheck) Name() string {
	return "telemetry"
}

// Check verifies that the telemetry listener is active.
func (n *TelemetryHealthCheck) Check(ctx context.Context) error {
	if n.listenerAddr() == "" {
		return fmt.Errorf("telemetry listener is not active")
	}
	return nil
}

// Detail reports how many spectator breakers are open. Open breakers do
// not fail the check.
func (n *TelemetryHealthCheck) Detail() string {
	if n.openBreakers == nil {
		return ""
	}
	return fmt.Sprintf("%d spectator breakers open", n.openBreakers())
}
