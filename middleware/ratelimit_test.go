package middleware

import (
	"testing"
	"time"

	"github.com/yourusername/ecewo/core"
)

func newTestLimiter(rate, burst int, maxIdle time.Duration) *rateLimiter {
	return &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rate),
		burst:   float64(burst),
		maxIdle: maxIdle,
	}
}

func TestLimiterAllowsBurstThenRefuses(t *testing.T) {
	rl := newTestLimiter(1, 3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.allow("k", now); !ok {
			t.Fatalf("request %d inside burst was refused", i)
		}
	}
	ok, retryIn := rl.allow("k", now)
	if ok {
		t.Fatal("request beyond burst was allowed")
	}
	if retryIn <= 0 || retryIn > time.Second {
		t.Errorf("retryIn = %v, want within (0, 1s]", retryIn)
	}
}

func TestLimiterRefillsOverTime(t *testing.T) {
	rl := newTestLimiter(2, 1, time.Minute)
	now := time.Now()

	if ok, _ := rl.allow("k", now); !ok {
		t.Fatal("first request refused")
	}
	if ok, _ := rl.allow("k", now); ok {
		t.Fatal("second immediate request allowed")
	}
	// At 2 tokens/sec, 600ms buys back one token.
	if ok, _ := rl.allow("k", now.Add(600*time.Millisecond)); !ok {
		t.Fatal("request after refill interval refused")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(1, 1, time.Minute)
	now := time.Now()

	if ok, _ := rl.allow("a", now); !ok {
		t.Fatal("key a refused its burst")
	}
	if ok, _ := rl.allow("b", now); !ok {
		t.Fatal("key b should not share key a's bucket")
	}
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	rl := newTestLimiter(100, 100, time.Millisecond)
	now := time.Now()

	rl.allow("stale", now)
	// Drive enough traffic on a fresh key to trigger the periodic sweep
	// after the stale key's idle window has passed.
	later := now.Add(time.Second)
	for i := 0; i < sweepEvery+1; i++ {
		rl.allow("busy", later)
	}

	rl.mu.Lock()
	_, staleAlive := rl.buckets["stale"]
	_, busyAlive := rl.buckets["busy"]
	rl.mu.Unlock()
	if staleAlive {
		t.Error("idle bucket survived the sweep")
	}
	if !busyAlive {
		t.Error("active bucket was swept")
	}
}

func TestRateLimitMiddlewareSends429(t *testing.T) {
	mw := RateLimitWithConfig(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	handler := mw(func(c *core.Context) error { return c.JSON(200, nil) })

	run := func() *core.Context {
		c := &core.Context{}
		c.SetMethod("GET")
		c.SetPath("/limited")
		c.SetRequestHeader("X-Real-IP", "10.0.0.1")
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return c
	}

	if c := run(); c.StatusCode() != 200 {
		t.Fatalf("first request status = %d, want 200", c.StatusCode())
	}
	if c := run(); c.StatusCode() != 429 {
		t.Fatalf("second request status = %d, want 429", c.StatusCode())
	}
}

func TestRateLimitCustomErrorHandler(t *testing.T) {
	var gotRetry time.Duration
	mw := RateLimitWithConfig(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		ErrorHandler: func(c *core.Context, retryIn time.Duration) error {
			gotRetry = retryIn
			return c.Text(503, "slow down")
		},
	})
	handler := mw(func(c *core.Context) error { return c.JSON(200, nil) })

	for i := 0; i < 2; i++ {
		c := &core.Context{}
		c.SetMethod("GET")
		c.SetPath("/limited")
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if i == 1 && c.StatusCode() != 503 {
			t.Fatalf("status = %d, want the custom handler's 503", c.StatusCode())
		}
	}
	if gotRetry <= 0 {
		t.Errorf("custom handler received retryIn = %v, want > 0", gotRetry)
	}
}
