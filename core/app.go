package core

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/ecewo/arena"
	"github.com/yourusername/ecewo/loop"
)

// App is the main ecewo application.
//
// App manages:
//   - Route registration (Get, Post, Put, Delete, etc.)
//   - Middleware chains
//   - HTTP server lifecycle (net/http, one per cluster worker)
//   - Per-request arena and event-loop wiring
//   - Context pooling
//   - Graceful shutdown
//
// Example:
//
//	app := core.New()
//	app.Get("/hello", func(c *core.Context) error {
//	    return c.JSON(200, map[string]string{"message": "Hello, World!"})
//	})
//	app.Listen(":8080")
type App struct {
	router       IRouter // ✅ Interface allows choosing router implementation
	contextPool  *ContextPool
	config       Config
	middleware   []Middleware
	errorHandler ErrorHandler
	server       *http.Server
	serverMu     sync.RWMutex // Protects server field from concurrent access

	// lp is the event loop driving this worker's connections. It is nil
	// until SetLoop is called, in which case handlers have no access to
	// Context.Loop()/IncrementAsyncWork — fine for tests, wrong for a
	// process that uses the async DB bridge.
	lp *loop.Loop
}

// New creates a new ecewo application with default configuration.
func New() *App {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new ecewo application with custom configuration.
func NewWithConfig(config Config) *App {
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultErrorHandler
	}

	// Create context pool
	contextPool := NewContextPool()

	// ✅ OPTIMIZATION: Pre-warm pool to eliminate cold start allocations
	// Pre-allocate 1000 contexts (covers burst traffic, ~1.3MB memory)
	contextPool.Warmup(1000)

	router := config.Router
	if router == nil {
		router = NewRouter()
	}

	return &App{
		router:       router,
		contextPool:  contextPool,
		config:       config,
		middleware:   make([]Middleware, 0),
		errorHandler: config.ErrorHandler,
	}
}

// Use adds global middleware to the application.
//
// Middleware is executed in the order it's registered.
//
// Example:
//
//	app.Use(Logger())
//	app.Use(CORS())
//	app.Use(Recovery())
func (app *App) Use(middleware ...Middleware) {
	app.middleware = append(app.middleware, middleware...)
}

// SetLoop wires an event loop into the app so handlers can reach it via
// Context.Loop() and pair async work with IncrementAsyncWork/
// DecrementAsyncWork. A cluster worker calls this once at startup, before
// Listen/Run, with the loop driving its listener.
func (app *App) SetLoop(lp *loop.Loop) {
	app.lp = lp
}

// Get registers a GET route.
//
// Example:
//
//	app.Get("/users/:id", getUser)
func (app *App) Get(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodGet, path, handler)
}

// Post registers a POST route.
//
// Example:
//
//	app.Post("/users", createUser)
func (app *App) Post(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodPost, path, handler)
}

// Put registers a PUT route.
//
// Example:
//
//	app.Put("/users/:id", updateUser)
func (app *App) Put(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodPut, path, handler)
}

// Delete registers a DELETE route.
//
// Example:
//
//	app.Delete("/users/:id", deleteUser)
func (app *App) Delete(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodDelete, path, handler)
}

// Patch registers a PATCH route.
//
// Example:
//
//	app.Patch("/users/:id", patchUser)
func (app *App) Patch(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodPatch, path, handler)
}

// Head registers a HEAD route.
func (app *App) Head(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodHead, path, handler)
}

// Options registers an OPTIONS route.
func (app *App) Options(path string, handler Handler) *ChainLink {
	return app.addRoute(MethodOptions, path, handler)
}

// addRoute registers a route with the router.
func (app *App) addRoute(method HTTPMethod, path string, handler Handler) *ChainLink {
	// Wrap handler with global middleware
	finalHandler := handler
	for i := len(app.middleware) - 1; i >= 0; i-- {
		finalHandler = app.middleware[i](finalHandler)
	}

	// Register with router
	app.router.Add(method, path, finalHandler)

	// Return chain link for fluent API
	return &ChainLink{
		app: app,
		lastRoute: &RouteInfo{
			Method:  method,
			Path:    path,
			Handler: finalHandler,
		},
	}
}

// Listen starts the HTTP server on the specified address.
//
// This is a blocking call. The server runs until interrupted (Ctrl+C).
//
// Example:
//
//	app.Listen(":8080")
func (app *App) Listen(addr string) error {
	app.config.Addr = addr

	srv := &http.Server{
		Addr:    addr,
		Handler: app,
	}

	app.serverMu.Lock()
	app.server = srv
	app.serverMu.Unlock()

	log.Printf("ecewo server listening on %s", addr)

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Serve accepts connections on l. Used by callers that open their own
// listener — a cluster worker sharing its port via SO_REUSEPORT opens the
// listener itself and hands it here.
func (app *App) Serve(l net.Listener) error {
	srv := &http.Server{Handler: app}

	app.serverMu.Lock()
	app.server = srv
	app.serverMu.Unlock()

	err := srv.Serve(l)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Run starts the server with graceful shutdown support.
//
// The server runs until interrupted (Ctrl+C), then performs graceful shutdown.
//
// Example:
//
//	app.Run(":8080")
func (app *App) Run(addr string) error {
	app.config.Addr = addr

	srv := &http.Server{
		Addr:    addr,
		Handler: app,
	}

	app.serverMu.Lock()
	app.server = srv
	app.serverMu.Unlock()

	// Start server in background
	errChan := make(chan error, 1)
	go func() {
		log.Printf("ecewo server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Println("Shutting down gracefully...")

		// Graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
			return err
		}

		log.Println("Server stopped")
		return nil
	}
}

// Shutdown gracefully shuts down the server.
//
// It waits for active connections to finish (up to context deadline).
func (app *App) Shutdown(ctx context.Context) error {
	app.serverMu.RLock()
	srv := app.server
	app.serverMu.RUnlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, the single request entry point for
// both Listen/Run and standard Go http testing tools like httptest.
//
// Example (testing):
//
//	app := core.New()
//	app.Get("/ping", handler)
//	req := httptest.NewRequest("GET", "/ping", nil)
//	w := httptest.NewRecorder()
//	app.ServeHTTP(w, req)
func (app *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Acquire context from pool
	ctx := app.contextPool.Acquire()

	// Map http.Request to Context (ZERO-ALLOC: unsafe string→[]byte)
	if app.config.MaxRequestBodySize > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, int64(app.config.MaxRequestBodySize))
	}
	ctx.httpReq = r
	ctx.httpRes = w
	// SAFE: Read-only references, valid for request lifetime
	ctx.methodBytes = stringToBytes(r.Method)
	ctx.pathBytes = stringToBytes(r.URL.Path)
	ctx.queryBytes = stringToBytes(r.URL.RawQuery)

	// Every request gets its own arena; handlers that hand work off to an
	// async callback must Retain() it before returning.
	ctx.reqArena = arena.New()
	ctx.lp = app.lp

	// Route and execute handler
	err := app.router.ServeHTTP(ctx)

	// ✅ FAST PATH: Handle 404 directly (most common error)
	if err == ErrNotFound {
		_ = ctx.JSONNotFound()
	} else if err != nil {
		app.errorHandler(ctx, err)
	}

	ctx.reqArena.Release()

	// Release context back to pool (direct call, no defer overhead)
	app.contextPool.Release(ctx)
}
