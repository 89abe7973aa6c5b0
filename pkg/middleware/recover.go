package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/resor-app/resor/pkg/apperr"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/metrics"
	"github.com/resor-app/resor/pkg/response"
)

// Recovery turns a handler panic into an InternalServerError problem. The
// panic value and stack only go to the log.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			metrics.PanicsRecovered.Inc()
			logger.WithCtx(r.Context()).Error("handler panicked",
				"panic", fmt.Sprint(rec),
				"route", r.Method+" "+r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.Fail(w, apperr.Internal())
		}()
		next.ServeHTTP(w, r)
	})
}
