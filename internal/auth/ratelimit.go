// internal/auth/ratelimit.go

package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/imadgeboyega/campusconnect-backend/internal/common/utils"
	"golang.org/x/time/rate"
)

const limiterIdle = time.Hour

// RateLimiter limits requests per authenticated caller. It must run after
// Authenticate.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows reqsPerWindow requests per caller per window, with
// bursts up to reqsPerWindow
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	if reqsPerWindow < 1 {
		reqsPerWindow = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(window / time.Duration(reqsPerWindow)),
		burst:    reqsPerWindow,
		now:      time.Now,
	}
}

// Allow reports whether the caller may proceed now
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	now := rl.now()
	entry, ok := rl.limiters[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastAccess = now
	rl.sweep(now)
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// sweep drops limiters idle for an hour, at most once per idle period
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterIdle {
		return
	}
	rl.lastSweep = now
	for id, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > limiterIdle {
			delete(rl.limiters, id)
		}
	}
}

// Limit rejects callers over their budget with 429
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !rl.Allow(userID) {
			w.Header().Set("Retry-After", "60")
			utils.ErrorResponse(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
