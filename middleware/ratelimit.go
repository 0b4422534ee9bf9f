package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string]*clientWindow
	limit    int
	window   time.Duration
}

type clientWindow struct {
	count     int
	resetTime time.Time
}

// RateLimiter caps each client IP at limit requests per window. Expired
// windows are swept in the background.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{
		requests: make(map[string]*clientWindow),
		limit:    limit,
		window:   window,
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return func(c *gin.Context) {
		retryAfter, ok := rl.allow(c.ClientIP())
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) allow(ip string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.requests[ip]
	if !exists || now.After(client.resetTime) {
		rl.requests[ip] = &clientWindow{count: 1, resetTime: now.Add(rl.window)}
		return 0, true
	}
	if client.count >= rl.limit {
		return client.resetTime.Sub(now), false
	}
	client.count++
	return 0, true
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, client := range rl.requests {
		if now.After(client.resetTime) {
			delete(rl.requests, ip)
		}
	}
}
