// Package rbac gates routes on the caller's role.
package rbac

import (
	"net/http"

	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/middleware"
	"github.com/resor-app/resor/pkg/response"
)

// HasRole admits callers whose role is one of roles and answers everyone
// else with 403. It reads the Principal stored by middleware.AuthMiddleware,
// so a route without authentication in front of it always denies.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := middleware.PrincipalFromCtx(r.Context())
			if !ok || !oneOf(p.Role, roles) {
				logger.WithCtx(r.Context()).Info("role denied",
					"user_id", p.UserID,
					"role", p.Role,
					"path", r.URL.Path,
				)
				response.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func oneOf(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
