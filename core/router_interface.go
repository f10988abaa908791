package core

// IRouter is the routing contract App depends on. App holds the interface
// rather than the concrete Router so tests (and embedders with their own
// routing scheme) can substitute an implementation.
type IRouter interface {
	// Add registers a route with the given method, path, and handler.
	Add(method HTTPMethod, path string, handler Handler)

	// Lookup finds a handler for the given method and path.
	Lookup(method HTTPMethod, path string) (Handler, map[string]string)

	// LookupBytes finds a handler using byte slices (zero-allocation).
	LookupBytes(method HTTPMethod, pathBytes []byte) (Handler, [maxInlineParams]ParamPair, int)

	// ServeHTTP dispatches c to its routed handler.
	ServeHTTP(c *Context) error
}

var _ IRouter = (*Router)(nil)
