package web

import (
	"strings"
	"sync"

	"github.com/valyala/fasthttp"
)

// FastRequestHandler handles fasthttp requests
type FastRequestHandler func(ctx *FastRequestContext) error

// FastMiddleware is middleware for fasthttp
type FastMiddleware func(handler FastRequestHandler) FastRequestHandler

// FastRouter matches method + path patterns (":name" segments are parameters).
// Middleware registered with Use wraps every request, matched or not, so it can
// answer requests such as CORS preflights that have no route.
type FastRouter struct {
	routes     []*fastRoute
	middleware []FastMiddleware
	prefix     string
	parent     *FastRouter
	mu         sync.RWMutex
}

type fastRoute struct {
	method  string
	path    string
	parts   []string
	handler FastRequestHandler
}

// NewFastRouter creates a new fasthttp router
func NewFastRouter() *FastRouter {
	return &FastRouter{
		routes:     make([]*fastRoute, 0),
		middleware: make([]FastMiddleware, 0),
	}
}

// Group returns a router that registers its routes under prefix on the same route table
func (r *FastRouter) Group(prefix string) *FastRouter {
	return &FastRouter{
		prefix: joinPath(r.prefix, prefix),
		parent: r.root(),
	}
}

func (r *FastRouter) root() *FastRouter {
	if r.parent != nil {
		return r.parent
	}
	return r
}

// Use adds middleware around all requests
func (r *FastRouter) Use(mw ...FastMiddleware) {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.middleware = append(root.middleware, mw...)
}

func (r *FastRouter) GETFast(path string, handler FastRequestHandler) {
	r.RouteFast(fasthttp.MethodGet, path, handler)
}

func (r *FastRouter) POSTFast(path string, handler FastRequestHandler) {
	r.RouteFast(fasthttp.MethodPost, path, handler)
}

func (r *FastRouter) PUTFast(path string, handler FastRequestHandler) {
	r.RouteFast(fasthttp.MethodPut, path, handler)
}

func (r *FastRouter) DELETEFast(path string, handler FastRequestHandler) {
	r.RouteFast(fasthttp.MethodDelete, path, handler)
}

// RouteFast registers a handler for method and path (relative to the group prefix)
func (r *FastRouter) RouteFast(method, path string, handler FastRequestHandler) {
	full := joinPath(r.prefix, path)
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()

	root.routes = append(root.routes, &fastRoute{
		method:  method,
		path:    full,
		parts:   strings.Split(full, "/"),
		handler: handler,
	})
}

// ServeFastHTTP dispatches the request through middleware to the matching route.
// Handler errors that were not already written become a 500.
func (r *FastRouter) ServeFastHTTP(ctx *FastRequestContext) {
	r.mu.RLock()
	middleware := r.middleware
	r.mu.RUnlock()

	handler := r.dispatch
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}

	if err := handler(ctx); err != nil {
		ctx.Logger().Errorf("handler error: %v", err)
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
	}
}

func (r *FastRouter) dispatch(ctx *FastRequestContext) error {
	method := string(ctx.Method())
	path := string(ctx.Path())

	r.mu.RLock()
	route, params := r.match(method, path)
	r.mu.RUnlock()

	if route == nil {
		return ctx.JSON(fasthttp.StatusNotFound, map[string]string{"message": "Not Found"})
	}

	for k, v := range params {
		ctx.Params[k] = v
	}
	ctx.Route = route.path
	return route.handler(ctx)
}

func (r *FastRouter) match(method, path string) (*fastRoute, map[string]string) {
	pathParts := strings.Split(path, "/")

	for _, route := range r.routes {
		if route.method != method || len(route.parts) != len(pathParts) {
			continue
		}
		params := matchParts(route.parts, pathParts)
		if params != nil {
			return route, params
		}
	}
	return nil, nil
}

// matchParts returns the extracted params, or nil when the path does not match
func matchParts(pattern, path []string) map[string]string {
	params := make(map[string]string)
	for i, part := range pattern {
		if strings.HasPrefix(part, ":") {
			if path[i] == "" {
				return nil
			}
			params[strings.TrimPrefix(part, ":")] = path[i]
			continue
		}
		if part != path[i] {
			return nil
		}
	}
	return params
}

// joinPath joins URL path segments with exactly one slash between them
func joinPath(prefix, path string) string {
	prefix = strings.TrimRight(prefix, "/")
	if path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}
