// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the public-site rate limiter: one token bucket per client
// identity (see ClientIdentity), 100 requests per 15 minutes by default across
// the /api tree. Buckets idle for longer than idleAfter are swept at most once
// per idleAfter, so memory stays proportional to recently active clients.
//
// Replays flagged by IdempotencyValidator are not charged. The limiter is
// process-local; it is abuse control, not authorization.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const defaultIdleAfter = 30 * time.Minute

// keyFunc maps a request to its bucket.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by "user:<id>" when authenticated and by
// "ip:<addr>" otherwise.
func KeyByUserOrIP() keyFunc { return ClientIdentity }

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a per-identity token-bucket limiter. Safe for concurrent use.
type RateLimiter struct {
	limit rate.Limit
	burst int
	keyFn keyFunc
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	idleAfter time.Duration
	lastSweep time.Time
}

// NewRateLimiter builds a limiter refilling rps tokens per second up to burst
// (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(rps),
		burst:     max(burst, 1),
		keyFn:     keyFn,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		idleAfter: defaultIdleAfter,
		lastSweep: time.Now(),
	}
}

// limiterFor returns the bucket for key, creating it when absent. Idle
// buckets are dropped before the lookup.
func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleAfter {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) >= rl.idleAfter {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// retryAfter is the whole number of seconds until lim has a token, at least 1.
func retryAfter(lim *rate.Limiter, now time.Time) string {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return "1"
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return strconv.Itoa(max(int(math.Ceil(delay.Seconds())), 1))
}

// Handler enforces the limit. A denied request gets 429, a Retry-After
// header and the error envelope with code "rate_limited".
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		now := rl.now()
		lim := rl.limiterFor(rl.keyFn(c), now)
		if lim.AllowN(now, 1) {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter(lim, now))
		AbortWithError(c, http.StatusTooManyRequests, "rate_limited",
			"Too many requests from this IP, please try again later.")
	}
}
