// Package mockclient drives an application in-process for tests: requests
// go straight into the app's ServeHTTP without a listening socket, each
// bounded by a per-request timeout so a handler that never replies fails
// the test instead of hanging it.
package mockclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/yourusername/ecewo/kinderr"
)

// TestModeEnv is set to "1" for the duration of a client's lifetime so
// code under test can detect it is being driven in-process.
const TestModeEnv = "ECEWO_TEST_MODE"

// DefaultTimeout bounds each request.
const DefaultTimeout = 5 * time.Second

// Params describes one request to issue.
type Params struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Response is the outcome of one request.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Header returns a response header value, case-insensitively, or "" when
// absent.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Client issues in-process requests against a handler.
type Client struct {
	handler http.Handler
	timeout time.Duration

	prevTestMode string
	hadTestMode  bool
}

// New builds a client around handler and marks the process as running in
// test mode. Call Cleanup when done to restore the environment.
func New(handler http.Handler) *Client {
	c := &Client{handler: handler, timeout: DefaultTimeout}
	c.prevTestMode, c.hadTestMode = os.LookupEnv(TestModeEnv)
	os.Setenv(TestModeEnv, "1")
	return c
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

// Cleanup restores the test-mode environment variable to its prior state.
func (c *Client) Cleanup() {
	if c.hadTestMode {
		os.Setenv(TestModeEnv, c.prevTestMode)
	} else {
		os.Unsetenv(TestModeEnv)
	}
}

// Request issues one request and waits for the handler to finish, up to the
// client's timeout.
func (c *Client) Request(p Params) (*Response, error) {
	if p.Method == "" {
		p.Method = http.MethodGet
	}
	var body io.Reader
	if p.Body != "" {
		body = strings.NewReader(p.Body)
	}
	req := httptest.NewRequest(p.Method, p.Path, body)
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.handler.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
	case <-time.After(c.timeout):
		return nil, kinderr.New(kinderr.IO, "mockclient: request timed out")
	}

	res := rec.Result()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, kinderr.Wrap(kinderr.IO, "mockclient: read response body", err)
	}
	return &Response{
		StatusCode: res.StatusCode,
		Body:       data,
		Headers:    res.Header,
	}, nil
}

// Get issues a GET request to path.
func (c *Client) Get(path string) (*Response, error) {
	return c.Request(Params{Method: http.MethodGet, Path: path})
}

// Post issues a POST request with the given body.
func (c *Client) Post(path, body string) (*Response, error) {
	return c.Request(Params{Method: http.MethodPost, Path: path, Body: body})
}
