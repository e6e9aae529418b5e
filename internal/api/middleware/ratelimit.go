package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter applies a sliding-window limit per client key.
type RateLimiter struct {
	requests int
	window   time.Duration
	visitors map[string]*visitorWindow
	mu       sync.RWMutex
}

type visitorWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func NewRateLimiter(requests int, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	rl := &RateLimiter{
		requests: requests,
		window:   time.Duration(windowSeconds) * time.Second,
		visitors: make(map[string]*visitorWindow),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops visitors with no recent activity.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, visitor := range rl.visitors {
			visitor.mu.Lock()
			idle := len(visitor.timestamps) == 0 ||
				now.Sub(visitor.timestamps[len(visitor.timestamps)-1]) > rl.window*2
			visitor.mu.Unlock()
			if idle {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether a request under the key may proceed, with the
// remaining budget and the window reset time.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	rl.mu.RLock()
	visitor, exists := rl.visitors[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if visitor, exists = rl.visitors[key]; !exists {
			visitor = &visitorWindow{timestamps: make([]time.Time, 0, rl.requests)}
			rl.visitors[key] = visitor
		}
		rl.mu.Unlock()
	}

	visitor.mu.Lock()
	defer visitor.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	kept := visitor.timestamps[:0]
	for _, ts := range visitor.timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	visitor.timestamps = kept

	remaining := rl.requests - len(visitor.timestamps)
	if remaining <= 0 {
		resetTime := visitor.timestamps[0].Add(rl.window)
		return false, 0, resetTime
	}

	visitor.timestamps = append(visitor.timestamps, now)
	return true, remaining - 1, now.Add(rl.window)
}

// RateLimit limits by client IP.
func RateLimit(requests int, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, windowSeconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyLimit(limiter, clientIP(r), w, r, next)
		})
	}
}

// RateLimitByUser limits by authenticated user, falling back to IP for
// anonymous requests. Mount after Auth.
func RateLimitByUser(requests int, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, windowSeconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if userID := GetUserID(r.Context()); userID.String() != "00000000-0000-0000-0000-000000000000" {
				key = "user:" + userID.String()
			}
			applyLimit(limiter, key, w, r, next)
		})
	}
}

func applyLimit(limiter *RateLimiter, key string, w http.ResponseWriter, r *http.Request, next http.Handler) {
	allowed, remaining, resetTime := limiter.Allow(key)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.requests))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

	if !allowed {
		w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds())+1, 10))
		http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	next.ServeHTTP(w, r)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return xff[:i]
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
