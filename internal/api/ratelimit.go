package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// rateLimiter keeps one token bucket per client ip.
type rateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*client
	r           rate.Limit
	burst       int
	lastCleanup time.Time
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		clients:     make(map[string]*client),
		r:           rate.Limit(rps),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

func (rl *rateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	// drop stale entries at most once a minute
	if now.Sub(rl.lastCleanup) > time.Minute {
		for key, c := range rl.clients {
			if now.Sub(c.seen) > 3*time.Minute {
				delete(rl.clients, key)
			}
		}
		rl.lastCleanup = now
	}

	if c, ok := rl.clients[ip]; ok {
		c.seen = now
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[ip] = &client{lim: l, seen: now}
	return l
}

func (rl *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP()).Allow() {
			abort(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}
