// Package benchmarks compares this framework's request path against Gin,
// Echo, and Fiber under identical httptest-driven scenarios: a static
// JSON route, a parameterized route, and a five-deep middleware chain.
//
// Run with: go test -bench=. -benchmem ./benchmarks
package benchmarks

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/labstack/echo/v4"

	"github.com/yourusername/ecewo/core"
)

type pingResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// passMiddleware is a do-nothing middleware used to measure chain
// traversal cost; five of them approximate a realistic stack.
func passMiddleware(next core.Handler) core.Handler {
	return func(c *core.Context) error { return next(c) }
}

func newEcewoApp(middlewares int) *core.App {
	app := core.New()
	for i := 0; i < middlewares; i++ {
		app.Use(passMiddleware)
	}
	app.Get("/ping", func(c *core.Context) error {
		return c.JSON(200, pingResponse{Message: "pong"})
	})
	app.Get("/users/:id", func(c *core.Context) error {
		return c.JSON(200, userResponse{ID: c.Param("id"), Name: "alice"})
	})
	return app
}

// --- static route ---

func BenchmarkEcewoStatic(b *testing.B) {
	app := newEcewoApp(0)
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		app.ServeHTTP(w, req)
	}
}

func BenchmarkGinStatic(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEchoStatic(b *testing.B) {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		e.ServeHTTP(w, req)
	}
}

func BenchmarkFiberStatic(b *testing.B) {
	app := fiber.New()
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = app.Test(req, -1)
	}
}

// --- parameterized route ---

func BenchmarkEcewoParam(b *testing.B) {
	app := newEcewoApp(0)
	req := httptest.NewRequest("GET", "/users/123", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		app.ServeHTTP(w, req)
	}
}

func BenchmarkGinParam(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/users/:id", func(c *gin.Context) {
		c.JSON(200, userResponse{ID: c.Param("id"), Name: "alice"})
	})
	req := httptest.NewRequest("GET", "/users/123", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEchoParam(b *testing.B) {
	e := echo.New()
	e.GET("/users/:id", func(c echo.Context) error {
		return c.JSON(200, userResponse{ID: c.Param("id"), Name: "alice"})
	})
	req := httptest.NewRequest("GET", "/users/123", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		e.ServeHTTP(w, req)
	}
}

func BenchmarkFiberParam(b *testing.B) {
	app := fiber.New()
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		return c.JSON(userResponse{ID: c.Params("id"), Name: "alice"})
	})
	req := httptest.NewRequest("GET", "/users/123", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = app.Test(req, -1)
	}
}

// --- five-deep middleware chain ---

func BenchmarkEcewoMiddlewareChain(b *testing.B) {
	app := newEcewoApp(5)
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		app.ServeHTTP(w, req)
	}
}

func BenchmarkGinMiddlewareChain(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	for i := 0; i < 5; i++ {
		r.Use(func(c *gin.Context) { c.Next() })
	}
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEchoMiddlewareChain(b *testing.B) {
	e := echo.New()
	for i := 0; i < 5; i++ {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		})
	}
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		e.ServeHTTP(w, req)
	}
}

func BenchmarkFiberMiddlewareChain(b *testing.B) {
	app := fiber.New()
	for i := 0; i < 5; i++ {
		app.Use(func(c *fiber.Ctx) error { return c.Next() })
	}
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(pingResponse{Message: "pong"})
	})
	req := httptest.NewRequest("GET", "/ping", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = app.Test(req, -1)
	}
}
