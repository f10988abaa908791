package mockclient

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/yourusername/ecewo/core"
	"github.com/yourusername/ecewo/kinderr"
)

func TestRequestRoundTrip(t *testing.T) {
	app := core.New()
	app.Get("/ping", func(c *core.Context) error {
		return c.Text(200, "pong")
	})
	app.Post("/echo", func(c *core.Context) error {
		var payload struct {
			Msg string `json:"msg"`
		}
		if err := c.BindJSON(&payload); err != nil {
			return c.Text(400, "bad json")
		}
		return c.Text(200, payload.Msg)
	})

	client := New(app)
	defer client.Cleanup()

	res, err := client.Get("/ping")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if res.StatusCode != 200 {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if string(res.Body) != "pong" {
		t.Errorf("body = %q, want %q", res.Body, "pong")
	}

	res, err = client.Post("/echo", `{"msg":"hello"}`)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if string(res.Body) != "hello" {
		t.Errorf("body = %q, want %q", res.Body, "hello")
	}
}

func TestHeaderLookupIsCaseInsensitive(t *testing.T) {
	app := core.New()
	app.Get("/h", func(c *core.Context) error {
		c.SetHeader("X-Custom", "value")
		return c.NoContent()
	})

	client := New(app)
	defer client.Cleanup()

	res, err := client.Get("/h")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, key := range []string{"X-Custom", "x-custom", "X-CUSTOM"} {
		if got := res.Header(key); got != "value" {
			t.Errorf("Header(%q) = %q, want %q", key, got, "value")
		}
	}
}

func TestRequestHeadersReachHandler(t *testing.T) {
	app := core.New()
	app.Get("/auth", func(c *core.Context) error {
		return c.Text(200, c.GetHeader("Authorization"))
	})

	client := New(app)
	defer client.Cleanup()

	res, err := client.Request(Params{
		Path:    "/auth",
		Headers: map[string]string{"Authorization": "Bearer token123"},
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if string(res.Body) != "Bearer token123" {
		t.Errorf("body = %q, want the Authorization header echoed", res.Body)
	}
}

func TestTimeoutOnHangingHandler(t *testing.T) {
	hang := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})

	client := New(hang)
	defer client.Cleanup()
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Request(Params{Path: "/never"})
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
	if !kinderr.Is(err, kinderr.IO) {
		t.Errorf("err = %v, want IO kind", err)
	}
}

func TestTestModeEnvSetAndRestored(t *testing.T) {
	os.Unsetenv(TestModeEnv)

	app := core.New()
	client := New(app)
	if got := os.Getenv(TestModeEnv); got != "1" {
		t.Errorf("%s = %q while client is live, want %q", TestModeEnv, got, "1")
	}
	client.Cleanup()
	if _, ok := os.LookupEnv(TestModeEnv); ok {
		t.Errorf("%s still set after Cleanup", TestModeEnv)
	}
}
