package middleware

import (
	"testing"
	"time"

	"github.com/yourusername/ecewo/core"
)

func timedContext(path string) *core.Context {
	c := &core.Context{}
	c.SetMethod("GET")
	c.SetPath(path)
	return c
}

func TestTimeoutPassesFastHandler(t *testing.T) {
	mw := Timeout(time.Second)
	c := timedContext("/fast")

	err := mw(func(c *core.Context) error {
		return c.JSON(200, map[string]string{"ok": "yes"})
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if c.StatusCode() != 200 {
		t.Errorf("status = %d, want 200", c.StatusCode())
	}
}

func TestTimeoutSends408ForSlowHandler(t *testing.T) {
	mw := Timeout(20 * time.Millisecond)
	c := timedContext("/slow")

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := mw(func(c *core.Context) error {
		<-release
		return nil
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout fired after %v, want ~20ms", elapsed)
	}
	if c.StatusCode() != 408 {
		t.Errorf("status = %d, want 408", c.StatusCode())
	}
}

func TestTimeoutCustomHandler(t *testing.T) {
	mw := TimeoutWithConfig(TimeoutConfig{
		Timeout: 20 * time.Millisecond,
		Handler: func(c *core.Context) error {
			return c.Text(504, "upstream too slow")
		},
	})
	c := timedContext("/custom")

	release := make(chan struct{})
	defer close(release)

	err := mw(func(c *core.Context) error {
		<-release
		return nil
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if c.StatusCode() != 504 {
		t.Errorf("status = %d, want the custom handler's 504", c.StatusCode())
	}
}

func TestTimeoutSkipPaths(t *testing.T) {
	mw := TimeoutWithConfig(TimeoutConfig{
		Timeout:   10 * time.Millisecond,
		SkipPaths: []string{"/upload"},
	})
	c := timedContext("/upload")

	err := mw(func(c *core.Context) error {
		time.Sleep(30 * time.Millisecond)
		return c.JSON(200, nil)
	})(c)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if c.StatusCode() != 200 {
		t.Errorf("status = %d, want 200 (deadline must not apply to skipped path)", c.StatusCode())
	}
}
