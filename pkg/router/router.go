// Package router wraps chi with named routes and prefix groups that carry
// their own middleware.
package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

type Router struct {
	mux chi.Router

	mu     sync.RWMutex
	names  map[string]string
	routes []RouteInfo
}

type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

func New() *Router {
	return &Router{
		mux:   chi.NewRouter(),
		names: make(map[string]string),
	}
}

func (r *Router) Handler() http.Handler { return r.mux }

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use appends global middleware. It must be called before any route is added.
func (r *Router) Use(middlewares ...Middleware) {
	for _, mw := range middlewares {
		r.mux.Use(mw)
	}
}

// NotFound sets the handler for unmatched paths.
func (r *Router) NotFound(h http.HandlerFunc) { r.mux.NotFound(h) }

// MethodNotAllowed sets the handler for matched paths with the wrong method.
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

func (r *Router) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      normalizePath(prefix),
		middlewares: append([]Middleware(nil), middlewares...),
	}
}

func (r *Router) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.add(http.MethodGet, normalizePath(path), name, h, mws)
}

func (r *Router) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.add(http.MethodPost, normalizePath(path), name, h, mws)
}

func (r *Router) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.add(http.MethodPut, normalizePath(path), name, h, mws)
}

func (r *Router) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.add(http.MethodPatch, normalizePath(path), name, h, mws)
}

func (r *Router) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	r.add(http.MethodDelete, normalizePath(path), name, h, mws)
}

// Handle mounts a plain http.Handler for GET, e.g. the metrics exporter.
func (r *Router) Handle(path, name string, h http.Handler, mws ...Middleware) {
	r.add(http.MethodGet, normalizePath(path), name, h, mws)
}

// Mount attaches h under prefix for every method, e.g. a file server.
func (r *Router) Mount(prefix string, h http.Handler) {
	p := normalizePath(prefix)
	r.mux.Mount(p, h)
	r.record(RouteInfo{Method: "*", Path: p + "/*"})
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.names[name]
	return p, ok
}

// URL builds a concrete path for a named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	path, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("route %q not found", name)
	}
	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("missing parameters for route %q", name)
	}
	return path, nil
}

// Routes lists every registered route ordered by path then method.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	out := append([]RouteInfo(nil), r.routes...)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func (r *Router) add(method, path, name string, h http.Handler, mws []Middleware) {
	r.mux.Method(method, path, chain(h, mws...))
	r.record(RouteInfo{Method: method, Path: path, Name: name})
}

func (r *Router) record(info RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, info)
	if info.Name != "" {
		r.names[info.Name] = info.Path
	}
}

func (g *Group) Group(prefix string, middlewares ...Middleware) *Group {
	return &Group{
		router:      g.router,
		prefix:      joinPath(g.prefix, prefix),
		middlewares: append(append([]Middleware(nil), g.middlewares...), middlewares...),
	}
}

func (g *Group) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.add(http.MethodGet, path, name, h, mws)
}

func (g *Group) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.add(http.MethodPost, path, name, h, mws)
}

func (g *Group) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.add(http.MethodPut, path, name, h, mws)
}

func (g *Group) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.add(http.MethodPatch, path, name, h, mws)
}

func (g *Group) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.add(http.MethodDelete, path, name, h, mws)
}

func (g *Group) add(method, path, name string, h http.Handler, mws []Middleware) {
	combined := append(append([]Middleware(nil), g.middlewares...), mws...)
	g.router.add(method, joinPath(g.prefix, path), name, h, combined)
}

func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func joinPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

func normalizePath(path string) string {
	return joinPath(path)
}
