package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/resor-app/resor/pkg/auth"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/response"
)

// AccessTokenHeader is the legacy header clients may use instead of
// "Authorization: Bearer".
const AccessTokenHeader = "X-Access-Token"

// Principal is the authenticated caller.
type Principal = auth.Principal

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller stored by AuthMiddleware.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// tokenFromRequest looks at the Authorization header, then X-Access-Token,
// then the ?token= query parameter (used by websocket clients).
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if t := r.Header.Get(AccessTokenHeader); t != "" {
		return strings.TrimSpace(t)
	}
	return r.URL.Query().Get("token")
}

// AuthMiddleware rejects requests without a valid token and stores the
// caller's Principal in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			logger.WithCtx(r.Context()).Debug("rejected token", "error", err)
			response.Unauthorized(w)
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{UserID: claims.UserID(), Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
