package middleware

import (
	"strconv"
	"strings"

	"github.com/yourusername/ecewo/core"
)

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	// AllowOrigins lists allowed origins; ["*"] (the default) allows all.
	AllowOrigins []string

	// AllowMethods lists methods advertised on preflight. Default: all
	// routable methods.
	AllowMethods []string

	// AllowHeaders lists request headers advertised on preflight; ["*"]
	// (the default) allows all.
	AllowHeaders []string

	// ExposeHeaders lists response headers scripts may read.
	ExposeHeaders []string

	// AllowCredentials permits cookies and Authorization on cross-origin
	// requests. Browsers reject credentials combined with a wildcard
	// origin, so enabling this echoes the request origin instead of "*".
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Default: 86400.
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"*"},
		MaxAge:       86400,
	}
}

// corsHeaders is the precomputed, per-middleware-instance header set: the
// joins and lookups happen once at registration, not per request.
type corsHeaders struct {
	allowAll    bool
	origins     map[string]struct{}
	methods     string
	headers     string
	expose      string
	maxAge      string
	credentials bool
}

// CORS returns a CORS middleware with the default (allow-everything)
// configuration.
//
// Example:
//
//	app.Use(middleware.CORS())
func CORS() core.Middleware {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a CORS middleware with custom configuration.
// Preflight OPTIONS requests are answered directly with 204; everything
// else gets the response headers and continues down the chain.
func CORSWithConfig(config CORSConfig) core.Middleware {
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"*"}
	}
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = DefaultCORSConfig().AllowMethods
	}
	if len(config.AllowHeaders) == 0 {
		config.AllowHeaders = []string{"*"}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 86400
	}

	h := corsHeaders{
		origins:     make(map[string]struct{}, len(config.AllowOrigins)),
		methods:     strings.Join(config.AllowMethods, ", "),
		headers:     strings.Join(config.AllowHeaders, ", "),
		expose:      strings.Join(config.ExposeHeaders, ", "),
		maxAge:      strconv.Itoa(config.MaxAge),
		credentials: config.AllowCredentials,
	}
	for _, origin := range config.AllowOrigins {
		if origin == "*" {
			h.allowAll = true
		}
		h.origins[origin] = struct{}{}
	}

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			origin := c.GetHeader("Origin")
			allowed := h.resolveOrigin(origin)

			if allowed != "" {
				c.SetHeader("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					// The response differs per origin; caches must key on
					// it.
					c.SetHeader("Vary", "Origin")
				}
				if h.credentials {
					c.SetHeader("Access-Control-Allow-Credentials", "true")
				}
				if h.expose != "" {
					c.SetHeader("Access-Control-Expose-Headers", h.expose)
				}
			}

			if c.Method() == "OPTIONS" {
				if allowed != "" {
					c.SetHeader("Access-Control-Allow-Methods", h.methods)
					c.SetHeader("Access-Control-Allow-Headers", h.headers)
					c.SetHeader("Access-Control-Max-Age", h.maxAge)
				}
				return c.NoContent()
			}

			return next(c)
		}
	}
}

// resolveOrigin returns the Access-Control-Allow-Origin value for a
// request origin, or "" when the origin is not allowed.
func (h *corsHeaders) resolveOrigin(origin string) string {
	if h.allowAll {
		if h.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	if _, ok := h.origins[origin]; ok {
		return origin
	}
	return ""
}
