package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resor-app/resor/pkg/apperr"
)

func TestCreatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"code": "AB12CD34"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Status int               `json:"status"`
		Data   map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, body.Status)
	assert.Equal(t, "AB12CD34", body.Data["code"])
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, apperr.Conflict("Voucher already used"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ProblemJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"ConflictError","message":"Voucher already used","status":409}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Fail(rec, errors.New("connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestUnauthorizedIsForbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	Unauthorized(rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "AuthorizationError")
}
