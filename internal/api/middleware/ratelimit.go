package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/feedbridge/pkg/response"
)

// rateLimitEntry tracks requests for a single client
type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// RateLimiter is a fixed one-minute window limiter keyed by client
type RateLimiter struct {
	mu             sync.Mutex
	clients        map[string]*rateLimitEntry
	requestsPerMin int
	lastPrune      time.Time
	now            func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		clients:        make(map[string]*rateLimitEntry),
		requestsPerMin: requestsPerMinute,
		now:            time.Now,
	}
}

// Allow checks if a request is allowed for the given client
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.prune(now)

	entry, exists := rl.clients[client]
	if !exists || now.After(entry.resetTime) {
		rl.clients[client] = &rateLimitEntry{count: 1, resetTime: now.Add(time.Minute)}
		return true
	}

	if entry.count >= rl.requestsPerMin {
		return false
	}
	entry.count++
	return true
}

// prune drops expired windows at most once a minute
func (rl *RateLimiter) prune(now time.Time) {
	if now.Sub(rl.lastPrune) < time.Minute {
		return
	}
	rl.lastPrune = now
	for key, entry := range rl.clients {
		if now.After(entry.resetTime) {
			delete(rl.clients, key)
		}
	}
}

// RateLimitMiddleware limits requests per client IP. A non-positive limit
// disables it.
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := NewRateLimiter(requestsPerMinute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
