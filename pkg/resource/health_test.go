package resource

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHealthCheck_Name(t *testing.T) {
	check := NewHealthCheck(newTestManager(t, testLimits(10)))
	if check.Name() != "resource" {
		t.Errorf("Expected name 'resource', got %s", check.Name())
	}
}

func TestHealthCheck_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		m := newTestManager(t, testLimits(10))
		m.heapAlloc = func() uint64 { return 1 << 20 }
		if err := NewHealthCheck(m).Check(context.Background()); err != nil {
			t.Errorf("Expected healthy check to pass, got %v", err)
		}
	})

	t.Run("memory over limit", func(t *testing.T) {
		limits := testLimits(10)
		limits.MaxMemoryMB = 1
		m := newTestManager(t, limits)
		m.heapAlloc = func() uint64 { return 2 << 20 }
		if err := NewHealthCheck(m).Check(context.Background()); err == nil {
			t.Error("Expected health check to fail due to memory limit")
		}
	})

	t.Run("goroutines over threshold", func(t *testing.T) {
		m := newTestManager(t, testLimits(5))
		m.heapAlloc = func() uint64 { return 0 }
		release := make(chan struct{})
		defer close(release)
		for i := 0; i < 5; i++ {
			_ = m.Go("busy", func(ctx context.Context) error {
				<-release
				return nil
			})
		}
		if err := NewHealthCheck(m).Check(context.Background()); err == nil {
			t.Error("Expected health check to fail due to goroutine threshold")
		}
	})

	t.Run("failed task", func(t *testing.T) {
		m := newTestManager(t, testLimits(10))
		m.heapAlloc = func() uint64 { return 0 }
		_ = m.Go("telemetry", func(ctx context.Context) error { return errors.New("bind failed") })
		_ = m.Wait()

		err := NewHealthCheck(m).Check(context.Background())
		if err == nil || !strings.Contains(err.Error(), "telemetry") {
			t.Errorf("Check = %v, want telemetry failure", err)
		}
	})
}
