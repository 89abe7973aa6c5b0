package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/middleware"
)

func TestHasRole(t *testing.T) {
	h := HasRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name      string
		principal *auth.Principal
		want      int
	}{
		{"anonymous", nil, http.StatusForbidden},
		{"user", &auth.Principal{UserID: "u1", Role: auth.RoleUser}, http.StatusForbidden},
		{"admin", &auth.Principal{UserID: "a1", Role: auth.RoleAdmin}, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/vouchers", nil)
			if tc.principal != nil {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), *tc.principal))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
