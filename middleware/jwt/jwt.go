// Package jwt authenticates requests with bearer tokens from the
// Authorization header, storing validated claims on the request context.
package jwt

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/ecewo/core"
)

// Errors surfaced to the configured ErrorHandler.
var (
	ErrMissingToken      = errors.New("missing authorization token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
)

// JWTConfig configures bearer-token authentication.
type JWTConfig struct {
	// Secret is the HMAC key tokens are validated against. Required.
	Secret []byte

	// Algorithm pins the accepted signing algorithm (HS256, HS384,
	// HS512). Default: HS256. Tokens signed with anything else are
	// rejected before signature verification.
	Algorithm string

	// SkipPaths are exact request paths served without authentication
	// (login, registration, health).
	SkipPaths []string

	// ContextKey is where validated claims land on the context.
	// Default: "user".
	ContextKey string

	// ErrorHandler builds the response for a failed authentication. Nil
	// sends a 401 carrying the error message.
	ErrorHandler func(*core.Context, error) error
}

// DefaultJWTConfig returns the default configuration for secret.
func DefaultJWTConfig(secret []byte) JWTConfig {
	return JWTConfig{Secret: secret, Algorithm: "HS256", ContextKey: "user"}
}

// JWT returns a bearer-token authentication middleware.
//
// Example:
//
//	app.Use(jwt.JWT(jwt.JWTConfig{Secret: []byte("my-secret-key")}))
func JWT(config JWTConfig) core.Middleware {
	return JWTWithConfig(config)
}

// JWTWithConfig returns a JWT middleware with custom configuration.
func JWTWithConfig(config JWTConfig) core.Middleware {
	if config.Algorithm == "" {
		config.Algorithm = "HS256"
	}
	if config.ContextKey == "" {
		config.ContextKey = "user"
	}

	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{config.Algorithm}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return config.Secret, nil }

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			if _, ok := skip[c.Path()]; ok {
				return next(c)
			}

			raw, err := bearerToken(c.GetHeader("Authorization"))
			if err != nil {
				return fail(c, config.ErrorHandler, err)
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(raw, claims, keyFunc)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return fail(c, config.ErrorHandler, ErrTokenExpired)
			case err != nil:
				return fail(c, config.ErrorHandler, err)
			case !token.Valid:
				return fail(c, config.ErrorHandler, ErrInvalidToken)
			}

			c.Set(config.ContextKey, claims)
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

func fail(c *core.Context, handler func(*core.Context, error) error, err error) error {
	if handler != nil {
		return handler(c, err)
	}
	return c.JSON(401, map[string]interface{}{"error": err.Error()})
}
