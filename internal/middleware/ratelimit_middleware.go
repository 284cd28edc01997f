package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/GTDGit/panel_api/internal/utils"
)

// LoginRateLimiter throttles login attempts per client IP.
type LoginRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
}

// NewLoginRateLimiter allows burst attempts per IP, refilled at limit.
func NewLoginRateLimiter(limit rate.Limit, burst int) *LoginRateLimiter {
	return &LoginRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    limit,
		burst:    burst,
	}
}

// NewDefaultLoginRateLimiter allows 5 attempts per minute per IP.
func NewDefaultLoginRateLimiter() *LoginRateLimiter {
	return NewLoginRateLimiter(rate.Every(time.Minute/5), 5)
}

// Allow checks if ip can make another attempt.
func (r *LoginRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	limiter, ok := r.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[ip] = limiter
	}
	r.lastSeen[ip] = time.Now()
	r.mu.Unlock()

	return limiter.Allow()
}

// Cleanup drops limiters idle for longer than idle.
func (r *LoginRateLimiter) Cleanup(idle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for ip, seen := range r.lastSeen {
		if now.Sub(seen) > idle {
			delete(r.limiters, ip)
			delete(r.lastSeen, ip)
		}
	}
}

// Handle returns the gin middleware.
func (r *LoginRateLimiter) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			log.Warn().Str("ip", c.ClientIP()).Msg("Login rate limit exceeded")
			utils.Error(c, 429, "RATE_LIMITED", "Too many login attempts. Please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
