// internal/events/health.go

package events

import (
	"sync"
	"time"
)

// Health is the state of the external explanation service
type Health struct {
	Healthy   bool      `json:"healthy"`
	Failures  int       `json:"failures"`
	LastCheck time.Time `json:"last_check"`
}

// Check applies the window reset rule: when more than window has elapsed
// since the last check, failures are cleared and the service is healthy again.
func (h Health) Check(now time.Time, window time.Duration) Health {
	if h.LastCheck.IsZero() || now.Sub(h.LastCheck) > window {
		h.Failures = 0
		h.Healthy = true
	}
	h.LastCheck = now
	return h
}

// Fail records a failed call; the service turns unhealthy at maxFailures
// consecutive failures
func (h Health) Fail(now time.Time, maxFailures int) Health {
	h.Failures++
	h.LastCheck = now
	if h.Failures >= maxFailures {
		h.Healthy = false
	}
	return h
}

// Succeed records a successful call
func (h Health) Succeed(now time.Time) Health {
	h.Failures = 0
	h.Healthy = true
	h.LastCheck = now
	return h
}

// HealthTracker guards a Health value shared by concurrent requests
type HealthTracker struct {
	mu          sync.Mutex
	state       Health
	window      time.Duration
	maxFailures int
	now         func() time.Time
}

// NewHealthTracker creates a tracker. A nil clock means time.Now.
func NewHealthTracker(window time.Duration, maxFailures int, now func() time.Time) *HealthTracker {
	if now == nil {
		now = time.Now
	}
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &HealthTracker{
		state:       Health{Healthy: true},
		window:      window,
		maxFailures: maxFailures,
		now:         now,
	}
}

// Available checks the service health, applying the window reset
func (t *HealthTracker) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = t.state.Check(t.now(), t.window)
	return t.state.Healthy
}

// Failure records a failed call
func (t *HealthTracker) Failure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = t.state.Fail(t.now(), t.maxFailures)
}

// Success records a successful call
func (t *HealthTracker) Success() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = t.state.Succeed(t.now())
}

// Snapshot returns the current state
func (t *HealthTracker) Snapshot() Health {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
