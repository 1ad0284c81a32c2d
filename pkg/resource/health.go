// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// HealthCheck reports the manager unhealthy when memory exceeds the limit
// or the task count passes 80% of its limit.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a health check for manager.
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{manager: manager}
}

// Name returns the name of this health check.
func (r *HealthCheck) Name() string {
	return "resource"
}

// Check samples memory and compares both counters to their limits.
func (r *HealthCheck) Check(ctx context.Context) error {
	if err := r.manager.CheckMemoryUsage(); err != nil {
		return err
	}

	stats := r.manager.GetStats()
	threshold := int64(float64(stats.MaxGoroutines) * 0.8)
	if stats.GoroutineCount > threshold {
		return fmt.Errorf("goroutine count %d exceeds 80%% threshold (%d/%d)",
			stats.GoroutineCount, threshold, stats.MaxGoroutines)
	}
	if err := r.manager.Err(); err != nil {
		return fmt.Errorf("task failed: %w", err)
	}
	return nil
}
