package middleware

import (
	"errors"
	"time"

	"github.com/yourusername/ecewo/core"
)

// ErrRequestTimeout names the request-timeout condition. The Timeout
// middleware does not return it: a timed-out request gets a 408 (or the
// custom handler's response) and the chain returns that call's result.
var ErrRequestTimeout = errors.New("request timeout")

// TimeoutConfig configures the request timeout middleware.
type TimeoutConfig struct {
	// Timeout is the maximum duration for a request. Default: 30 seconds.
	Timeout time.Duration

	// SkipPaths are exact request paths exempt from the deadline (large
	// uploads, long-poll endpoints).
	SkipPaths []string

	// Handler builds the response for a timed-out request. Nil sends a
	// 408.
	Handler func(c *core.Context) error
}

// DefaultTimeoutConfig returns the default timeout configuration.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Timeout: 30 * time.Second}
}

// Timeout returns a middleware that bounds each request to duration. A
// handler that overruns keeps running on its goroutine, but the client
// gets a 408 and the chain returns; the late handler's writes land on an
// already-answered response and are discarded by net/http.
//
// Example:
//
//	app.Use(middleware.Timeout(5 * time.Second))
func Timeout(duration time.Duration) core.Middleware {
	return TimeoutWithConfig(TimeoutConfig{Timeout: duration})
}

// TimeoutWithConfig returns a Timeout middleware with custom
// configuration.
func TimeoutWithConfig(config TimeoutConfig) core.Middleware {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			if _, ok := skip[c.Path()]; ok {
				return next(c)
			}

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			timer := time.NewTimer(config.Timeout)
			defer timer.Stop()

			select {
			case err := <-done:
				return err
			case <-timer.C:
				if config.Handler != nil {
					return config.Handler(c)
				}
				return c.JSON(408, map[string]interface{}{
					"error":   "Request timeout",
					"timeout": config.Timeout.String(),
				})
			}
		}
	}
}
