package validation

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// RateLimiter implements a token bucket rate limiter per client
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	clients     map[string]*clientLimiter
	mu          deadlock.RWMutex
	cleanupTick *time.Ticker
	done        chan struct{}
	now         func() time.Time
}

// clientLimiter tracks rate limiting state for a single client
type clientLimiter struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
	maxTokens  int
	window     time.Duration
	mu         deadlock.Mutex
}

// NewRateLimiter creates a rate limiter granting maxRequests per window to
// each client.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return newRateLimiter(maxRequests, window, time.Now)
}

func newRateLimiter(maxRequests int, window time.Duration, now func() time.Time) *RateLimiter {
	rl := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string]*clientLimiter),
		done:        make(chan struct{}),
		now:         now,
	}

	rl.cleanupTick = time.NewTicker(window)
	go rl.cleanup()

	return rl
}

// Allow checks if a request should be allowed for the given client ID
func (rl *RateLimiter) Allow(clientID string) bool {
	now := rl.now()

	rl.mu.Lock()
	limiter, exists := rl.clients[clientID]
	if !exists {
		limiter = &clientLimiter{
			tokens:     rl.maxRequests,
			lastRefill: now,
			maxTokens:  rl.maxRequests,
			window:     rl.window,
		}
		rl.clients[clientID] = limiter
	}
	rl.mu.Unlock()

	return limiter.consume(now)
}

// Forget drops the bucket of a disconnected client.
func (rl *RateLimiter) Forget(clientID string) {
	rl.mu.Lock()
	delete(rl.clients, clientID)
	rl.mu.Unlock()
}

// Clients returns the number of tracked clients
func (rl *RateLimiter) Clients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// consume refills the bucket for the time elapsed and takes one token.
func (cl *clientLimiter) consume(now time.Time) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.lastSeen = now
	elapsed := now.Sub(cl.lastRefill)
	if elapsed > 0 && cl.tokens < cl.maxTokens {
		windowsPassed := float64(elapsed) / float64(cl.window)
		tokensToAdd := int(float64(cl.maxTokens) * windowsPassed)

		if tokensToAdd > 0 {
			cl.tokens += tokensToAdd
			if cl.tokens > cl.maxTokens {
				cl.tokens = cl.maxTokens
			}
			cl.lastRefill = now
		}
	}

	if cl.tokens > 0 {
		cl.tokens--
		return true
	}

	return false
}

// cleanup removes inactive clients to prevent memory leaks
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.removeInactiveClients()
		case <-rl.done:
			return
		}
	}
}

// removeInactiveClients removes clients that haven't been seen for 2 windows
func (rl *RateLimiter) removeInactiveClients() {
	cutoff := rl.now().Add(-2 * rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for clientID, limiter := range rl.clients {
		limiter.mu.Lock()
		if limiter.lastSeen.Before(cutoff) {
			delete(rl.clients, clientID)
		}
		limiter.mu.Unlock()
	}
}

// Close stops the rate limiter and cleans up resources
func (rl *RateLimiter) Close() {
	close(rl.done)
	rl.cleanupTick.Stop()
}
