package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by client host. Scan
// start/stop requests reconfigure hardware, so they are throttled per client.
type RateLimiter struct {
	requests    map[string][]time.Time
	mu          sync.Mutex
	limit       int
	window      time.Duration
	lastCleanup time.Time
}

// NewRateLimiter creates a new rate limiter with the specified limit and time window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests:    make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
	}
}

// cleanup drops clients with no request inside the window. Caller holds mu.
func (rl *RateLimiter) cleanupLocked(now time.Time) {
	for ip, times := range rl.requests {
		valid := recent(times, now, rl.window)
		if len(valid) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = valid
		}
	}
	rl.lastCleanup = now
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cleanupLocked(time.Now())
}

func recent(times []time.Time, now time.Time, window time.Duration) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	return valid
}

// Allow checks if a request from the given IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	// Sweep idle clients lazily instead of from a background goroutine.
	if now.Sub(rl.lastCleanup) > rl.window {
		rl.cleanupLocked(now)
	}

	valid := recent(rl.requests[ip], now, rl.window)
	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}
	rl.requests[ip] = append(valid, now)
	return true
}

// clientHost strips the port from RemoteAddr so reconnects share a bucket.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware creates a middleware that rate limits requests
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientHost(r)) {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
