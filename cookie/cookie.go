// Package cookie parses Cookie headers and builds Set-Cookie values. It
// implements just enough of the cookie grammar (name=value plus the
// attributes sessions issue) to serve the session store, delegating
// RFC-token parsing to net/http, plus the one attribute legality check
// browsers enforce: SameSite=None requires Secure.
package cookie

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yourusername/ecewo/kinderr"
)

// SameSite mirrors the three legal SameSite attribute values.
type SameSite string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
	SameSiteNone   SameSite = "None"
)

// Options configures a Set-Cookie value. Defaults are Path=/,
// SameSite=Lax, HttpOnly, Secure=false.
type Options struct {
	Path     string
	Domain   string
	SameSite SameSite
	HTTPOnly bool
	Secure   bool

	// MaxAge follows net/http.Cookie's convention: 0 omits the Max-Age
	// attribute (a session cookie), a positive value sets Max-Age to that
	// many seconds, and a negative value expires the cookie immediately
	// (Max-Age=0).
	MaxAge int
}

// DefaultOptions returns the default cookie attributes.
func DefaultOptions() Options {
	return Options{
		Path:     "/",
		SameSite: SameSiteLax,
		HTTPOnly: true,
		Secure:   false,
	}
}

// Validate rejects the one illegal attribute combination:
// SameSite=None without Secure.
func (o Options) Validate() error {
	if o.SameSite == SameSiteNone && !o.Secure {
		return kinderr.New(kinderr.Config, "SameSite=None requires Secure")
	}
	if o.SameSite != "" && o.SameSite != SameSiteLax && o.SameSite != SameSiteStrict && o.SameSite != SameSiteNone {
		return kinderr.New(kinderr.Config, fmt.Sprintf("invalid SameSite value %q", o.SameSite))
	}
	return nil
}

// Build renders a Set-Cookie header value for name=value under opts.
func Build(name, value string, opts Options) (string, error) {
	if name == "" {
		return "", kinderr.New(kinderr.Config, "cookie name must not be empty")
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s", name, value)
	if opts.Path != "" {
		fmt.Fprintf(&b, "; Path=%s", opts.Path)
	}
	if opts.Domain != "" {
		fmt.Fprintf(&b, "; Domain=%s", opts.Domain)
	}
	if opts.MaxAge > 0 {
		fmt.Fprintf(&b, "; Max-Age=%d", opts.MaxAge)
	} else if opts.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}
	if opts.SameSite != "" {
		fmt.Fprintf(&b, "; SameSite=%s", opts.SameSite)
	}
	if opts.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if opts.Secure {
		b.WriteString("; Secure")
	}
	return b.String(), nil
}

// Parse reads all cookies from an incoming request's Cookie header using
// net/http's RFC 6265 token parsing rather than re-specifying it here.
// Values are percent-decoded, so "user=hello%20world" yields
// "hello world"; a literal '+' passes through, and a value with a
// malformed escape is kept as sent.
func Parse(header string) map[string]string {
	req := &http.Request{Header: http.Header{"Cookie": {header}}}
	out := make(map[string]string)
	for _, c := range req.Cookies() {
		value := c.Value
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		out[c.Name] = value
	}
	return out
}

// Get returns one named cookie's value from a Cookie header, if present.
func Get(header, name string) (string, bool) {
	v, ok := Parse(header)[name]
	return v, ok
}
