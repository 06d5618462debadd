package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-dns/pkg/middleware/auth"
)

// Collect records request counts and latency. ca may be nil, in which
// case the role label is empty.
func Collect(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSkipPath(r) {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			role := ""
			if ca != nil {
				role = ca.GetUser(r.Context()).Role.Name
			}
			uri := normalizePath(r) // path only; avoid cardinality explosion
			requests.WithLabelValues(strconv.Itoa(ww.Status()), uri, r.Method, role).Inc()
			requestDuration.WithLabelValues(uri, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
