package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// client is the request counter of one IP inside the current window.
type client struct {
	windowStart time.Time
	count       int
}

type limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
}

// allow records one request from ip and reports whether it is within the limit.
func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.clients[ip]
	if !ok || now.Sub(cl.windowStart) >= l.window {
		// Drop stale clients while we hold the lock anyway.
		for k, v := range l.clients {
			if now.Sub(v.windowStart) >= l.window {
				delete(l.clients, k)
			}
		}
		l.clients[ip] = &client{windowStart: now, count: 1}
		return true
	}
	cl.count++
	return cl.count <= l.limit
}

// RateLimiter limits every client IP to `limit` requests per `window`.
// Each call returns an independent limiter.
//
// Response when the limit is exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{"message": "rate limit exceeded", "timestamp": "..."}
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &limiter{clients: make(map[string]*client), limit: limit, window: window, now: time.Now}

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
