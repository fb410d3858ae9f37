package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window counter per client key.
// State is per-process, which is acceptable for a single-instance
// deployment.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	length  time.Duration
}

type window struct {
	used    int
	startAt time.Time
}

func NewRateLimiter(limit int, length time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		length:  length,
	}
	go rl.evictLoop()
	return rl
}

// take consumes one request from the key's window and reports whether
// it was allowed together with the requests left in the window.
func (rl *RateLimiter) take(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.windows[key]
	if w == nil || now.Sub(w.startAt) >= rl.length {
		w = &window{startAt: now}
		rl.windows[key] = w
	}

	if w.used >= rl.limit {
		return false, 0
	}
	w.used++
	return true, rl.limit - w.used
}

// evictLoop drops windows idle for two full window lengths.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.length * 2)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.length)
		rl.mu.Lock()
		for key, w := range rl.windows {
			if w.startAt.Before(cutoff) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit limits requests per client IP and exposes the standard
// X-RateLimit headers.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := limiter.take(c.ClientIP())
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_RATE_LIMITED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
