package middleware

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/core"
)

// RecoveryConfig configures the panic recovery middleware.
type RecoveryConfig struct {
	// Logger receives the panic value and stack trace. Nil uses the
	// logrus standard logger.
	Logger *logrus.Logger

	// DisableStackTrace suppresses the stack trace field on the logged
	// entry.
	DisableStackTrace bool

	// Handler builds the client response after a panic. Nil sends a
	// generic 500.
	Handler func(c *core.Context, v interface{}) error
}

// DefaultRecoveryConfig returns the default recovery configuration.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{}
}

// Recovery returns a middleware that catches panics from the handler
// chain, logs them with the stack trace, and converts them into a 500
// response so one broken handler cannot take the worker down.
//
// Example:
//
//	app := core.New()
//	app.Use(middleware.Recovery())
func Recovery() core.Middleware {
	return RecoveryWithConfig(DefaultRecoveryConfig())
}

// RecoveryWithConfig returns a Recovery middleware with custom
// configuration.
func RecoveryWithConfig(config RecoveryConfig) core.Middleware {
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				entry := log.WithFields(logrus.Fields{
					"method": c.Method(),
					"path":   c.Path(),
					"panic":  r,
				})
				if !config.DisableStackTrace {
					entry = entry.WithField("stack", string(debug.Stack()))
				}
				entry.Error("handler panicked")

				if config.Handler != nil {
					err = config.Handler(c, r)
					return
				}
				err = c.JSONInternalError()
			}()

			return next(c)
		}
	}
}
