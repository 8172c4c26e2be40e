package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time          { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestHealthTrackerTurnsUnhealthyAfterMaxFailures(t *testing.T) {
	clock := &stepClock{t: testNow}
	tracker := NewHealthTracker(5*time.Minute, 3, clock.now)

	assert.True(t, tracker.Available())
	tracker.Failure()
	tracker.Failure()
	assert.True(t, tracker.Available())

	tracker.Failure()
	assert.False(t, tracker.Available())
	assert.Equal(t, 3, tracker.Snapshot().Failures)
}

func TestHealthTrackerResetsAfterWindow(t *testing.T) {
	clock := &stepClock{t: testNow}
	tracker := NewHealthTracker(5*time.Minute, 3, clock.now)

	for i := 0; i < 3; i++ {
		tracker.Failure()
	}
	clock.advance(4 * time.Minute)
	assert.False(t, tracker.Available())

	clock.advance(5*time.Minute + time.Second)
	assert.True(t, tracker.Available())
	assert.Equal(t, 0, tracker.Snapshot().Failures)
}

func TestHealthSuccessClearsFailures(t *testing.T) {
	h := Health{}.Check(testNow, time.Minute)
	h = h.Fail(testNow, 3)
	h = h.Fail(testNow, 3)
	h = h.Succeed(testNow)

	assert.True(t, h.Healthy)
	assert.Equal(t, 0, h.Failures)
}
