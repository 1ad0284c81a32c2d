// Package network streams simulation snapshots to websocket spectators and
// accepts remote run commands.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-rocket/pkg/config"
	"github.com/opd-ai/go-rocket/pkg/logging"
)

// BreakerService wraps network operations with a circuit breaker so that a
// failing peer is isolated instead of stalling every broadcast.
type BreakerService struct {
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NetworkOperation represents a function that performs a network operation.
type NetworkOperation func() error

// NewBreakerService creates a breaker named name, configured from the
// circuit breaker environment settings.
func NewBreakerService(name string, envConfig *config.EnvironmentConfig, logger *logging.Logger) *BreakerService {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerService{
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
		maxRetries: 3,
		baseDelay:  time.Second,
	}
}

// Execute runs a network operation through the circuit breaker. An open
// circuit fails immediately with gobreaker.ErrOpenState.
func (bs *BreakerService) Execute(ctx context.Context, operation NetworkOperation) error {
	_, err := bs.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		bs.logger.LogWithContext(ctx, slog.LevelDebug, "circuit breaker execution failed",
			"error", err,
			"state", bs.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}

	return nil
}

// ExecuteWithRetry runs operation up to maxRetries times with a linearly
// growing delay, giving up early once the circuit opens.
func (bs *BreakerService) ExecuteWithRetry(ctx context.Context, operation NetworkOperation) error {
	for attempt := 0; attempt < bs.maxRetries; attempt++ {
		err := bs.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if bs.breaker.State() == gobreaker.StateOpen {
			bs.logger.Warn(ctx, "circuit breaker is open, skipping retries",
				"attempt", attempt+1,
				"max_retries", bs.maxRetries,
			)
			return err
		}

		if attempt == bs.maxRetries-1 {
			return fmt.Errorf("max retries (%d) exceeded: %w", bs.maxRetries, err)
		}

		delay := time.Duration(attempt+1) * bs.baseDelay
		bs.logger.Warn(ctx, "operation failed, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return fmt.Errorf("unexpected exit from retry loop")
}

// GetState returns the current state of the circuit breaker.
func (bs *BreakerService) GetState() gobreaker.State {
	return bs.breaker.State()
}
