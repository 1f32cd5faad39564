package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// visitor is a token bucket for one client address.
type visitor struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket. Buckets refill at rate
// tokens per second up to burst. Stale buckets are swept opportunistically
// during Allow, so the limiter needs no background goroutine.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      float64
	burst     float64
	lastSweep time.Time
	now       func() time.Time
}

const (
	visitorIdleCutoff = 10 * time.Minute
	visitorSweepEvery = time.Minute
)

func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		burst:    float64(burst),
		now:      time.Now,
	}
}

// Allow consumes one token for key, reporting whether the request may
// proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweepLocked(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{tokens: rl.burst, lastSeen: now}
		rl.visitors[key] = v
	}

	v.tokens += now.Sub(v.lastSeen).Seconds() * rl.rate
	if v.tokens > rl.burst {
		v.tokens = rl.burst
	}
	v.lastSeen = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < visitorSweepEvery {
		return
	}
	rl.lastSweep = now
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleCutoff {
			delete(rl.visitors, key)
		}
	}
}

// clientKey extracts the client address for bucketing. RealIP upstream
// rewrites RemoteAddr, which may or may not carry a port here.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit rejects requests over the configured rate with 429 and a
// Retry-After hint sized to one token's refill time.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	retryAfter := "1"
	if rate > 0 && rate < 1 {
		retryAfter = strconv.Itoa(int(1/rate) + 1)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
