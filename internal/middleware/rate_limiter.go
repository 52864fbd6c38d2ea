package middleware

import (
	"net/http"
	"sync"
	"time"

	"anypos/internal/apierror"

	"github.com/gin-gonic/gin"
)

// slidingWindow tracks request timestamps per client key.
type slidingWindow struct {
	mu      sync.Mutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	stopped chan struct{}
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	sw := &slidingWindow{
		hits:    make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		stopped: make(chan struct{}),
	}
	go sw.purge()
	return sw
}

func (sw *slidingWindow) allow(key string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-sw.window)

	recent := sw.hits[key][:0]
	for _, t := range sw.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= sw.limit {
		sw.hits[key] = recent
		return false
	}
	sw.hits[key] = append(recent, now)
	return true
}

// purge drops idle keys so the map does not grow unbounded.
func (sw *slidingWindow) purge() {
	ticker := time.NewTicker(sw.window)
	defer ticker.Stop()
	for {
		select {
		case <-sw.stopped:
			return
		case <-ticker.C:
			sw.mu.Lock()
			cutoff := time.Now().Add(-sw.window)
			for key, times := range sw.hits {
				alive := false
				for _, t := range times {
					if t.After(cutoff) {
						alive = true
						break
					}
				}
				if !alive {
					delete(sw.hits, key)
				}
			}
			sw.mu.Unlock()
		}
	}
}

// RateLimiter limits requests per client IP within the given window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	sw := newSlidingWindow(limit, window)
	return func(c *gin.Context) {
		if !sw.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests"))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter guards the credential endpoints against brute force.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(20, time.Minute)
}
