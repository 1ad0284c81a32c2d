// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/logging"
)

// ErrStopped is returned by Go once the manager is shutting down.
var ErrStopped = errors.New("resource manager stopped")

// Limits bounds the goroutines and heap a process may use.
type Limits struct {
	MaxMemoryMB     int64
	MaxGoroutines   int
	CheckInterval   time.Duration
	ShutdownTimeout time.Duration
}

// LimitsFrom reads the resource limits from the environment settings.
func LimitsFrom(cfg *config.EnvironmentConfig) Limits {
	return Limits{
		MaxMemoryMB:     cfg.MaxMemoryMB,
		MaxGoroutines:   cfg.MaxGoroutines,
		CheckInterval:   cfg.ResourceCheckInterval,
		ShutdownTimeout: cfg.ShutdownWindow,
	}
}

// Manager supervises the long running goroutines of the process: the frame
// loop, the telemetry server and its broadcaster. The first task to fail
// cancels the shared context so the remaining ones wind down together.
type Manager struct {
	limits Limits
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	count    atomic.Int64
	memoryMB atomic.Int64

	mu        deadlock.RWMutex
	tasks     map[string]int
	err       error
	stopped   bool
	lastCheck time.Time

	heapAlloc func() uint64
}

// NewManager creates a manager whose tasks run under a context derived
// from parent.
func NewManager(parent context.Context, limits Limits, logger *logging.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		limits:    limits,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		tasks:     make(map[string]int),
		heapAlloc: readHeapAlloc,
	}
}

func readHeapAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

// Context is cancelled when a task fails or Shutdown is called.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Go starts fn as a tracked task. It fails when the goroutine limit is
// reached or the manager is stopping. A non-nil error or panic from fn
// cancels every other task; context.Canceled is treated as a clean exit.
func (m *Manager) Go(name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.stopped || m.ctx.Err() != nil {
		m.mu.Unlock()
		return ErrStopped
	}
	if current := m.count.Load(); current >= int64(m.limits.MaxGoroutines) {
		m.mu.Unlock()
		m.logger.Warn(m.ctx, "Goroutine limit exceeded",
			"current", current,
			"limit", m.limits.MaxGoroutines,
			"name", name,
		)
		return fmt.Errorf("goroutine limit exceeded: %d/%d", current, m.limits.MaxGoroutines)
	}
	m.count.Add(1)
	m.tasks[name]++
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.finish(name)
		err := m.run(name, fn)
		if err != nil && !errors.Is(err, context.Canceled) {
			m.fail(name, err)
		}
	}()
	return nil
}

func (m *Manager) run(name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn(m.ctx)
}

func (m *Manager) finish(name string) {
	m.mu.Lock()
	if m.tasks[name]--; m.tasks[name] <= 0 {
		delete(m.tasks, name)
	}
	m.mu.Unlock()
	m.count.Add(-1)
	m.wg.Done()
}

func (m *Manager) fail(name string, err error) {
	m.mu.Lock()
	first := m.err == nil
	if first {
		m.err = fmt.Errorf("%s: %w", name, err)
	}
	m.mu.Unlock()

	m.logger.Error(m.ctx, "Task failed", err, "name", name)
	if first {
		m.cancel()
	}
}

// Err returns the first task failure, if any.
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Tasks returns the names of running tasks, sorted.
func (m *Manager) Tasks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tasks))
	for name := range m.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoroutineCount returns the number of running tasks.
func (m *Manager) GoroutineCount() int64 {
	return m.count.Load()
}

// MemoryUsage returns the heap size in MB at the last check.
func (m *Manager) MemoryUsage() int64 {
	return m.memoryMB.Load()
}

// CheckMemoryUsage samples the heap and compares it to the limit.
func (m *Manager) CheckMemoryUsage() error {
	currentMB := int64(m.heapAlloc() / 1024 / 1024)
	m.memoryMB.Store(currentMB)

	m.mu.Lock()
	m.lastCheck = time.Now()
	m.mu.Unlock()

	if currentMB > m.limits.MaxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.limits.MaxMemoryMB)
	}
	return nil
}

// Stats contains resource usage statistics.
type Stats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
	Tasks           []string  `json:"tasks"`
}

// GetStats returns current usage.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	last := m.lastCheck
	m.mu.RUnlock()
	return Stats{
		GoroutineCount:  m.GoroutineCount(),
		MaxGoroutines:   int64(m.limits.MaxGoroutines),
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.limits.MaxMemoryMB,
		LastMemoryCheck: last,
		Tasks:           m.Tasks(),
	}
}

// Monitor samples memory every CheckInterval until the context ends.
// It is meant to be started with Go.
func (m *Manager) Monitor(ctx context.Context) error {
	ticker := time.NewTicker(m.limits.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.CheckMemoryUsage(); err != nil {
				m.logger.Warn(ctx, "Memory limit exceeded", "error", err)
			}
			m.logger.Debug(ctx, "Resource usage check",
				"goroutines", m.GoroutineCount(),
				"max_goroutines", m.limits.MaxGoroutines,
				"memory_mb", m.MemoryUsage(),
				"max_memory_mb", m.limits.MaxMemoryMB,
			)
		case <-ctx.Done():
			return nil
		}
	}
}

// Wait blocks until every task has returned and reports the first failure.
func (m *Manager) Wait() error {
	m.wg.Wait()
	return m.Err()
}

// Shutdown cancels every task and waits up to ShutdownTimeout for them to
// return.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	m.mu.Unlock()

	m.logger.Info(ctx, "Shutting down resource manager", "tasks", m.Tasks())
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timeout, cancel := context.WithTimeout(ctx, m.limits.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		m.logger.Info(ctx, "All tracked goroutines finished")
		return nil
	case <-timeout.Done():
		remaining := m.GoroutineCount()
		m.logger.Warn(ctx, "Shutdown timeout exceeded with goroutines still running",
			"remaining", remaining,
			"tasks", m.Tasks(),
		)
		return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
	}
}
