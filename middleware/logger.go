package middleware

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/core"
)

// LoggerConfig configures the request logger.
type LoggerConfig struct {
	// Logger receives one entry per request. Nil uses the logrus standard
	// logger.
	Logger *logrus.Logger

	// SkipPaths are exact request paths never logged (health checks,
	// metrics scrapes).
	SkipPaths []string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{}
}

// Logger returns a middleware that logs one structured entry per request:
// method, path, status, and duration. The entry level follows the outcome
// (error for handler errors and 5xx, warn for 4xx, info otherwise).
//
// Example:
//
//	app := core.New()
//	app.Use(middleware.Logger())
func Logger() core.Middleware {
	return LoggerWithConfig(DefaultLoggerConfig())
}

// LoggerWithConfig returns a Logger middleware with custom configuration.
func LoggerWithConfig(config LoggerConfig) core.Middleware {
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
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

			start := time.Now()
			err := next(c)

			status := c.StatusCode()
			if status == 0 {
				status = 200
			}

			entry := log.WithFields(logrus.Fields{
				"method":      c.Method(),
				"path":        c.Path(),
				"status":      status,
				"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			})
			switch {
			case err != nil:
				entry.WithError(err).Error("request failed")
			case status >= 500:
				entry.Error("request completed")
			case status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}

			return err
		}
	}
}
