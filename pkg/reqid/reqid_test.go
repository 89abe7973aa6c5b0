package reqid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(Header))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, strings.Repeat("x", maxLen+1))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, rec.Header().Get(Header))
}

func TestUsable(t *testing.T) {
	assert.True(t, usable("order-feed_01.a"))
	assert.False(t, usable(""))
	assert.False(t, usable("bad id"))
	assert.False(t, usable("x\ny"))
}
