package middleware

import (
	"github.com/google/uuid"

	"github.com/yourusername/ecewo/core"
)

// RequestIDHeader is the header a request id is read from and echoed back
// under, matching the de facto convention the rest of the ecosystem uses.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a middleware that ensures every request carries a
// unique id: it reuses one already present on the incoming X-Request-ID
// header (useful behind a proxy or load balancer that already assigns
// one), or mints a new random UUID otherwise, then echoes it back on the
// response.
//
// Example:
//
//	app := core.New()
//	app.Use(middleware.RequestID())
//	app.Use(middleware.Logger()) // logger can then read c.GetHeader(RequestIDHeader)
func RequestID() core.Middleware {
	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			id := c.GetHeader(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.SetHeader(RequestIDHeader, id)
			return next(c)
		}
	}
}
