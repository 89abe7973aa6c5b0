package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/resor-app/resor/config"
	"github.com/resor-app/resor/pkg/reqid"
)

// CORSOptions configures the CORS middleware. An origin of "*" admits any
// caller.
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSOptions admits the origins listed in CORS_ORIGINS with the
// methods and headers the ordering API uses.
func DefaultCORSOptions() CORSOptions {
	var origins []string
	for _, o := range strings.Split(config.CORSOrigins(), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return CORSOptions{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", AccessTokenHeader, reqid.Header},
		MaxAge:         300,
	}
}

func (o CORSOptions) allow(origin string) (string, bool) {
	for _, a := range o.AllowedOrigins {
		if a == "*" {
			return "*", true
		}
		if origin != "" && strings.EqualFold(a, origin) {
			return origin, true
		}
	}
	return "", false
}

// CORS answers preflight requests itself and decorates every other response
// with the allow headers when the Origin is admitted.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(opts.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			allowed, ok := opts.allow(r.Header.Get("Origin"))
			if ok {
				h.Set("Access-Control-Allow-Origin", allowed)
				h.Set("Access-Control-Expose-Headers", reqid.Header)
				if allowed != "*" {
					h.Add("Vary", "Origin")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if ok {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if opts.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", maxAge)
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
