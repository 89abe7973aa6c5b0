package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(v string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", v)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsAndNames(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("api"))
	admin := api.Group("/admin", tag("admin"))
	admin.Patch("/orders/{orderId}", "orders.update", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/orders/42", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"api", "admin"}, rec.Header().Values("X-Chain"))

	url, err := r.URL("orders.update", map[string]string{"orderId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/orders/42", url)

	_, err = r.URL("orders.update", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesSorted(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/b", "b.store", noop)
	r.Get("/b", "b.index", noop)
	r.Get("/a", "a.index", noop)

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Method: "GET", Path: "/a", Name: "a.index"}, routes[0])
	assert.Equal(t, "GET", routes[1].Method)
	assert.Equal(t, "POST", routes[2].Method)
}
