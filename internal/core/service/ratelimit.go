package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry keeps one token bucket per client (by IP).
type RateLimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiterRegistry creates a registry allowing requestsPerSecond
// per client with the given burst. Clients unseen for idle are evicted.
func NewRateLimiterRegistry(requestsPerSecond float64, burst int, idle time.Duration) *RateLimiterRegistry {
	if burst < 1 {
		burst = max(1, int(requestsPerSecond))
	}
	return &RateLimiterRegistry{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		idle:     idle,
	}
}

// Allow reports whether a request from client may proceed now.
func (r *RateLimiterRegistry) Allow(client string) bool {
	now := time.Now()

	r.mu.Lock()
	e, ok := r.limiters[client]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[client] = e
	}
	e.lastSeen = now
	r.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Sweep removes clients that have been idle longer than the idle timeout
// and returns how many were removed.
func (r *RateLimiterRegistry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, e := range r.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(r.limiters, k)
			n++
		}
	}
	return n
}

// Size returns the number of tracked clients.
func (r *RateLimiterRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
