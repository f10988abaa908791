package core

import (
	"strings"
	"sync"
)

// Router resolves a (method, path) pair to a Handler. Exact paths are
// answered from a flat map; paths with :params or a *catch-all live in one
// segment tree per method. Registration takes the write lock; lookups take
// the read lock, so a worker can keep serving while late routes register.
type Router struct {
	mu     sync.RWMutex
	static map[string]Handler // "METHOD:PATH"
	trees  map[HTTPMethod]*node
}

// node is one path segment in the tree. Children are split by kind rather
// than kept in one ordered slice: exact matches win over :params, which
// win over a *catch-all, and the split makes that precedence structural
// instead of an iteration-order convention.
type node struct {
	staticChildren map[string]*node
	paramChild     *node
	wildChild      *node

	// paramName is set on param/wild nodes; the bytes form is converted
	// once at registration so lookups never allocate for it.
	paramName      string
	paramNameBytes []byte

	handler Handler
}

func newNode() *node {
	return &node{staticChildren: make(map[string]*node)}
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		static: make(map[string]Handler),
		trees:  make(map[HTTPMethod]*node),
	}
}

// Add registers handler for method and path. Paths may contain :name
// segments (match exactly one segment) and a trailing *name segment
// (match everything remaining). Registering the same path twice replaces
// the handler.
func (r *Router) Add(method HTTPMethod, path string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !strings.ContainsAny(path, ":*") {
		r.static[string(method)+":"+path] = handler
		return
	}

	root := r.trees[method]
	if root == nil {
		root = newNode()
		r.trees[method] = root
	}

	current := root
	for _, seg := range splitPath(path) {
		switch {
		case strings.HasPrefix(seg, ":"):
			if current.paramChild == nil {
				current.paramChild = newNode()
				current.paramChild.paramName = seg[1:]
				current.paramChild.paramNameBytes = []byte(seg[1:])
			}
			current = current.paramChild
		case strings.HasPrefix(seg, "*"):
			if current.wildChild == nil {
				current.wildChild = newNode()
				current.wildChild.paramName = seg[1:]
				current.wildChild.paramNameBytes = []byte(seg[1:])
			}
			current.wildChild.handler = handler
			return
		default:
			child := current.staticChildren[seg]
			if child == nil {
				child = newNode()
				current.staticChildren[seg] = child
			}
			current = child
		}
	}
	current.handler = handler
}

// ParamPair holds one extracted route parameter as byte slices referencing
// the lookup's path buffer.
type ParamPair struct {
	Key   []byte
	Value []byte
}

// maxInlineParams bounds how many parameters a single route can extract
// without heap allocation; routes deeper than this drop the excess.
const maxInlineParams = 8

// Lookup resolves method and path, returning the handler and extracted
// parameters as a map (nil when the route has none, or does not exist).
func (r *Router) Lookup(method HTTPMethod, path string) (Handler, map[string]string) {
	handler, params, n := r.LookupBytes(method, []byte(path))
	if handler == nil || n == 0 {
		return handler, nil
	}
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		out[string(params[i].Key)] = string(params[i].Value)
	}
	return handler, out
}

// LookupBytes resolves method and pathBytes without allocating: extracted
// parameters reference pathBytes directly, so they are only valid while
// the caller keeps that buffer alive and unmodified.
func (r *Router) LookupBytes(method HTTPMethod, pathBytes []byte) (Handler, [maxInlineParams]ParamPair, int) {
	var params [maxInlineParams]ParamPair

	r.mu.RLock()
	defer r.mu.RUnlock()

	var keyBuf [128]byte
	n := copy(keyBuf[:], method)
	keyBuf[n] = ':'
	n++
	n += copy(keyBuf[n:], pathBytes)
	if handler, ok := r.static[bytesToString(keyBuf[:n])]; ok {
		return handler, params, 0
	}

	root := r.trees[method]
	if root == nil {
		return nil, params, 0
	}
	count := 0
	handler := root.search(pathBytes, 0, &params, &count)
	return handler, params, count
}

// search walks the tree from the segment starting at offset start,
// backtracking from exact matches into the param child when a deeper
// segment fails to resolve.
func (nd *node) search(path []byte, start int, params *[maxInlineParams]ParamPair, count *int) Handler {
	// Skip slashes (collapses doubled separators too).
	for start < len(path) && path[start] == '/' {
		start++
	}
	if start >= len(path) {
		return nd.handler
	}

	end := start
	for end < len(path) && path[end] != '/' {
		end++
	}
	seg := path[start:end]

	if child, ok := nd.staticChildren[bytesToString(seg)]; ok {
		if h := child.search(path, end, params, count); h != nil {
			return h
		}
	}

	if child := nd.paramChild; child != nil && *count < maxInlineParams {
		params[*count] = ParamPair{Key: child.paramNameBytes, Value: seg}
		*count++
		if h := child.search(path, end, params, count); h != nil {
			return h
		}
		*count--
	}

	if child := nd.wildChild; child != nil {
		if *count < maxInlineParams {
			params[*count] = ParamPair{Key: child.paramNameBytes, Value: path[start:]}
			*count++
		}
		return child.handler
	}

	return nil
}

// splitPath breaks a registration path into its non-empty segments:
// "/users/:id/posts" → ["users", ":id", "posts"].
func splitPath(path string) []string {
	out := make([]string, 0, strings.Count(path, "/")+1)
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// ServeHTTP dispatches c to its routed handler, setting extracted route
// parameters on the context first. Returns ErrNotFound when no route
// matches.
func (r *Router) ServeHTTP(c *Context) error {
	handler, params, n := r.LookupBytes(HTTPMethod(c.MethodBytes()), c.PathBytes())
	if handler == nil {
		return ErrNotFound
	}
	for i := 0; i < n; i++ {
		c.setParamBytes(params[i].Key, params[i].Value)
	}
	return handler(c)
}
