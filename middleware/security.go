package middleware

import (
	"strconv"
	"strings"

	"github.com/yourusername/ecewo/core"
)

// Security returns a middleware that sets common browser security
// headers: no CSP by default, a one-year HSTS max-age, SAMEORIGIN
// framing, nosniff, and IE's X-Download-Options.
//
// Example:
//
//	app := core.New()
//	app.Use(Security())
func Security() core.Middleware {
	return SecurityWithConfig(DefaultSecurityConfig())
}

// SecurityWithConfig returns a security-headers middleware with custom
// configuration.
//
// Example:
//
//	app.Use(SecurityWithConfig(SecurityConfig{
//	    ContentSecurityPolicy: "default-src 'self'",
//	    HSTSMaxAge:            63072000,
//	    HSTSIncludeSubdomains: true,
//	    HSTSPreload:           true,
//	}))
func SecurityWithConfig(config SecurityConfig) core.Middleware {
	hsts := buildHSTSValue(config)
	frameOptions := config.FrameOptions
	referrerPolicy := config.ReferrerPolicy
	xssProtection := config.XSSProtection

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			if config.ContentSecurityPolicy != "" {
				c.SetHeader("Content-Security-Policy", config.ContentSecurityPolicy)
			}

			if hsts != "" {
				c.SetHeader("Strict-Transport-Security", hsts)
			}

			if frameOptions != "" {
				c.SetHeader("X-Frame-Options", frameOptions)
			}

			if !config.DisableNoSniff {
				c.SetHeader("X-Content-Type-Options", "nosniff")
			}

			if xssProtection != "" {
				c.SetHeader("X-XSS-Protection", xssProtection)
			}

			if referrerPolicy != "" {
				c.SetHeader("Referrer-Policy", referrerPolicy)
			}

			if !config.DisableIENoOpen {
				c.SetHeader("X-Download-Options", "noopen")
			}

			return next(c)
		}
	}
}

// buildHSTSValue assembles the Strict-Transport-Security header value from
// the max-age plus the optional includeSubDomains/preload directives.
func buildHSTSValue(config SecurityConfig) string {
	if config.HSTSMaxAge <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("max-age=")
	b.WriteString(strconv.Itoa(config.HSTSMaxAge))

	if config.HSTSIncludeSubdomains {
		b.WriteString("; includeSubDomains")
	}
	if config.HSTSPreload {
		b.WriteString("; preload")
	}

	return b.String()
}

// SecurityConfig defines configuration for the Security middleware.
type SecurityConfig struct {
	// ContentSecurityPolicy is the value of the Content-Security-Policy
	// header. Empty means the header is not sent.
	// Default: "" (not sent)
	ContentSecurityPolicy string

	// HSTSMaxAge is the max-age directive (in seconds) of the
	// Strict-Transport-Security header. A value <= 0 disables the header
	// entirely.
	// Default: 31536000 (1 year)
	HSTSMaxAge int

	// HSTSIncludeSubdomains appends "; includeSubDomains" to the HSTS header.
	// Default: false
	HSTSIncludeSubdomains bool

	// HSTSPreload appends "; preload" to the HSTS header.
	// Default: false
	HSTSPreload bool

	// FrameOptions is the value of the X-Frame-Options header. Empty means
	// the header is not sent.
	// Default: "SAMEORIGIN"
	FrameOptions string

	// ReferrerPolicy is the value of the Referrer-Policy header. Empty means
	// the header is not sent.
	// Default: "strict-origin-when-cross-origin"
	ReferrerPolicy string

	// XSSProtection is the value of the X-XSS-Protection header. Empty means
	// the header is not sent. Modern browsers ignore this header in favor of
	// CSP, but it's kept for parity with older clients.
	// Default: "1; mode=block"
	XSSProtection string

	// DisableNoSniff suppresses the X-Content-Type-Options: nosniff header.
	// Default: false (header is sent)
	DisableNoSniff bool

	// DisableIENoOpen suppresses the X-Download-Options: noopen header.
	// Default: false (header is sent)
	DisableIENoOpen bool
}

// DefaultSecurityConfig returns the default security header
// configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		ContentSecurityPolicy: "",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: false,
		HSTSPreload:           false,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XSSProtection:         "1; mode=block",
		DisableNoSniff:        false,
		DisableIENoOpen:       false,
	}
}
