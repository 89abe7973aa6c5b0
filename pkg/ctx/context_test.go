package ctx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resor-app/resor/pkg/apperr"
	appctx "github.com/resor-app/resor/pkg/ctx"
	"github.com/resor-app/resor/pkg/middleware"
	"github.com/resor-app/resor/pkg/validate"
)

type nameInput struct {
	Name string `json:"name"`
}

func (in nameInput) Validate() validate.Errors {
	v := validate.New()
	v.Required("name", in.Name)
	return v.Errors()
}

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apperr.Problem {
	t.Helper()
	var p apperr.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Success(map[string]any{"id": "1"})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":"1"}}`, rec.Body.String())
}

func TestBindJSONValidationFailure(t *testing.T) {
	called := false
	rec := serve(func(c *appctx.Context) {
		var in nameInput
		if !c.BindJSON(&in) {
			return
		}
		called = true
	}, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`)))

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, "ValidationError", p.Name)
	assert.Contains(t, p.Errors, "name")
}

func TestBindJSONMalformed(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		var in nameInput
		c.BindJSON(&in)
	}, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindJSONOK(t *testing.T) {
	var got nameInput
	rec := serve(func(c *appctx.Context) {
		if c.BindJSON(&got) {
			c.NoContent()
		}
	}, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Pizza"}`)))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Pizza", got.Name)
}

func TestFailHidesInternalMessage(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Fail(errors.New("mongo: connection refused"))
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestParamAndPrincipal(t *testing.T) {
	r := chi.NewRouter()
	var id string
	var p middleware.Principal
	r.Get("/orders/{orderId}", appctx.Wrap(func(c *appctx.Context) {
		id = c.Param("orderId")
		p = c.Principal()
		c.NoContent()
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/abc", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: "u1", Role: "admin"}))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc", id)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "admin", p.Role)
}
