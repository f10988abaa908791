package middleware

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ecewo/core"
)

func captureLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l, &buf
}

func runLogged(t *testing.T, mw core.Middleware, method, path string, h core.Handler) error {
	t.Helper()
	c := &core.Context{}
	c.SetMethod(method)
	c.SetPath(path)
	return mw(h)(c)
}

func TestLoggerEmitsOneEntryPerRequest(t *testing.T) {
	l, buf := captureLogger()
	mw := LoggerWithConfig(LoggerConfig{Logger: l})

	err := runLogged(t, mw, "GET", "/users", func(c *core.Context) error {
		return c.JSON(200, map[string]string{"ok": "yes"})
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected exactly one log line, got: %q", out)
	}
	for _, want := range []string{`"method":"GET"`, `"path":"/users"`, `"status":200`, "duration_ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %q", want, out)
		}
	}
}

func TestLoggerLevelsFollowOutcome(t *testing.T) {
	tests := []struct {
		name    string
		handler core.Handler
		level   string
	}{
		{"success", func(c *core.Context) error { return c.JSON(200, nil) }, `"level":"info"`},
		{"client error", func(c *core.Context) error { return c.JSONBadRequest() }, `"level":"warning"`},
		{"server error", func(c *core.Context) error { return c.JSONInternalError() }, `"level":"error"`},
		{"handler error", func(c *core.Context) error { return errors.New("boom") }, `"level":"error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := captureLogger()
			mw := LoggerWithConfig(LoggerConfig{Logger: l})
			_ = runLogged(t, mw, "GET", "/x", tt.handler)
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("expected %s in %q", tt.level, buf.String())
			}
		})
	}
}

func TestLoggerPropagatesHandlerError(t *testing.T) {
	l, _ := captureLogger()
	mw := LoggerWithConfig(LoggerConfig{Logger: l})

	boom := errors.New("boom")
	err := runLogged(t, mw, "GET", "/fail", func(c *core.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the handler's error back", err)
	}
}

func TestLoggerSkipPaths(t *testing.T) {
	l, buf := captureLogger()
	mw := LoggerWithConfig(LoggerConfig{Logger: l, SkipPaths: []string{"/health"}})

	_ = runLogged(t, mw, "GET", "/health", func(c *core.Context) error { return c.JSON(200, nil) })
	if buf.Len() != 0 {
		t.Errorf("skipped path was logged: %q", buf.String())
	}

	_ = runLogged(t, mw, "GET", "/api", func(c *core.Context) error { return c.JSON(200, nil) })
	if buf.Len() == 0 {
		t.Error("non-skipped path was not logged")
	}
}
