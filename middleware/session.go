package middleware

import (
	"time"

	"github.com/yourusername/ecewo/cookie"
	"github.com/yourusername/ecewo/core"
	"github.com/yourusername/ecewo/session"
)

// defaultSessionCookieName matches session.CookieName; kept as a local
// constant so this package's config surface reads on its own.
const defaultSessionCookieName = "session"

// SessionConfig configures the Session middleware.
type SessionConfig struct {
	// Store is the session registry to look sessions up in. Required.
	Store *session.Store

	// CookieName is the cookie carrying the session id.
	// Default: "session"
	CookieName string
}

// Session returns a middleware that attaches an existing session to the
// request context, if the incoming Cookie header names one the store still
// holds. It never creates a session — that stays a handler's decision (e.g.
// on login), made via store.Create plus SendSessionCookie.
//
// Example:
//
//	store := session.New(logger)
//	store.Init()
//	app.Use(middleware.Session(store))
//	app.Get("/me", func(c *core.Context) error {
//	    sess := c.Session()
//	    if sess == nil {
//	        return c.JSONUnauthorized()
//	    }
//	    ...
//	})
func Session(store *session.Store) core.Middleware {
	return SessionWithConfig(SessionConfig{Store: store})
}

// SessionWithConfig returns a Session middleware with custom configuration.
func SessionWithConfig(config SessionConfig) core.Middleware {
	cookieName := config.CookieName
	if cookieName == "" {
		cookieName = defaultSessionCookieName
	}
	store := config.Store

	return func(next core.Handler) core.Handler {
		return func(c *core.Context) error {
			if store != nil {
				if sid, ok := cookie.Get(c.GetHeader("Cookie"), cookieName); ok {
					if sess, found := store.Find(sid); found {
						c.SetSession(sess)
					}
				}
			}
			return next(c)
		}
	}
}

// SendSessionCookie writes a Set-Cookie header pointing at sess, with
// Max-Age derived from the session's remaining lifetime. opts supplies the
// other cookie attributes (Path, SameSite, Secure, ...); its MaxAge field
// is overwritten.
func SendSessionCookie(c *core.Context, sess *session.Session, cookieName string, opts cookie.Options) error {
	if cookieName == "" {
		cookieName = defaultSessionCookieName
	}

	maxAge := int(time.Until(sess.ExpiresAt()).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	opts.MaxAge = maxAge

	value, err := cookie.Build(cookieName, sess.ID(), opts)
	if err != nil {
		return err
	}
	c.SetHeader("Set-Cookie", value)
	return nil
}

// DestroySessionCookie frees sess from store and overwrites its cookie
// with an immediately-expiring one.
func DestroySessionCookie(c *core.Context, store *session.Store, sess *session.Session, cookieName string, opts cookie.Options) error {
	if cookieName == "" {
		cookieName = defaultSessionCookieName
	}
	opts.MaxAge = -1

	value, err := cookie.Build(cookieName, "", opts)
	if err != nil {
		return err
	}
	c.SetHeader("Set-Cookie", value)

	if store != nil && sess != nil {
		store.Free(sess)
	}
	return nil
}
