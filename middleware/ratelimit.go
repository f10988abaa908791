package middleware

import (
	"sync"
	"time"

	"github.com/yourusername/ecewo/core"
)

// RateLimitConfig configures per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is each key's sustained allowance. Default: 100.
	RequestsPerSecond int

	// Burst is how far a key can run ahead of its sustained rate.
	// Default: 20.
	Burst int

	// KeyFunc derives the limiting key from a request. Default: client IP
	// (X-Forwarded-For, then X-Real-IP).
	KeyFunc func(*core.Context) string

	// ErrorHandler builds the response for a limited request. Nil sends a
	// 429 with the retry delay.
	ErrorHandler func(c *core.Context, retryIn time.Duration) error

	// MaxIdle is how long an unused key's bucket is kept before the lazy
	// sweep drops it. Default: 5 minutes.
	MaxIdle time.Duration
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             20,
		MaxIdle:           5 * time.Minute,
	}
}

// RateLimit returns a token-bucket rate limiting middleware. Buckets are
// kept per key and swept lazily during ordinary traffic, so the middleware
// owns no background goroutine.
//
// Example:
//
//	app.Use(middleware.RateLimit(middleware.RateLimitConfig{
//	    RequestsPerSecond: 10,
//	    Burst:             5,
//	}))
func RateLimit(config RateLimitConfig) core.Middleware {
	return RateLimitWithConfig(config)
}

// RateLimitWithConfig returns a RateLimit middleware with custom
// configuration.
func RateLimitWithConfig(config RateLimitConfig) core.Middleware {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 100
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	if config.MaxIdle <= 0 {
		config.MaxIdle = 5 * time.Minute
	}

	rl := &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(config.RequestsPerSecond),
		burst:   float64(config.Burst),
		maxIdle: config.MaxIdle,
	}

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			ok, retryIn := rl.allow(config.KeyFunc(c), time.Now())
			if !ok {
				if config.ErrorHandler != nil {
					return config.ErrorHandler(c, retryIn)
				}
				return c.JSON(429, map[string]interface{}{
					"error":   "Rate limit exceeded",
					"retryIn": retryIn.Seconds(),
				})
			}
			return next(c)
		}
	}
}

// clientIPKey limits by client IP as reported by the usual proxy headers.
func clientIPKey(c *core.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	return "default"
}

// sweepEvery is how many allow calls pass between idle-bucket sweeps.
const sweepEvery = 256

// rateLimiter is a map of token buckets behind one mutex. Idle buckets are
// dropped by a sweep folded into every sweepEvery-th allow call, the same
// lazy-expiry shape the session store uses.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	maxIdle time.Duration
	ops     int
}

type bucket struct {
	tokens   float64
	refilled time.Time
	lastSeen time.Time
}

// allow refills key's bucket for the elapsed time, consumes one token if
// available, and reports how long until the next token otherwise.
func (rl *rateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.ops++
	if rl.ops%sweepEvery == 0 {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.maxIdle {
				delete(rl.buckets, k)
			}
		}
	}

	b := rl.buckets[key]
	if b == nil {
		b = &bucket{tokens: rl.burst, refilled: now}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.refilled).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.refilled = now
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, time.Duration((1 - b.tokens) / rl.rate * float64(time.Second))
}
