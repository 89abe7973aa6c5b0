// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *OrderController) Show(cx *ctx.Context) {
//	    order, err := c.orders.FindOne(cx.Context(), cx.Principal(), cx.Param("orderId"))
//	    if err != nil {
//	        cx.Fail(err)
//	        return
//	    }
//	    cx.Success(order)
//	}
//
//	r.Get("/orders/{orderId}", "orders.show", ctx.Wrap(c.Show))
package ctx

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/bind"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/middleware"
	"github.com/resor-app/resor/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a chi URL parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// DefaultQuery returns the query value for key, or def when empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

func (c *Context) Header(key string) string { return c.R.Header.Get(key) }

func (c *Context) Context() context.Context { return c.R.Context() }

// Principal returns the authenticated caller. It is the zero value on
// public routes.
func (c *Context) Principal() middleware.Principal {
	p, _ := middleware.PrincipalFromCtx(c.R.Context())
	return p
}

// BindJSON decodes and validates the body into dest. On failure the problem
// response has already been written and false is returned.
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.R, dest); err != nil {
		c.Fail(err)
		return false
	}
	return true
}

func (c *Context) Success(data any) { response.Success(c.W, data) }

func (c *Context) Created(data any) { response.Created(c.W, data) }

func (c *Context) NoContent() { response.NoContent(c.W) }

// Fail writes err as a problem body. Internal errors are logged with the
// request ID before their message is hidden from the client.
func (c *Context) Fail(err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.WithCtx(c.Context()).Error("request failed",
			"method", c.R.Method,
			"path", c.R.URL.Path,
			"error", err,
		)
	}
	response.Fail(c.W, err)
}
