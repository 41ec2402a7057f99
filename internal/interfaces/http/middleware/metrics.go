package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, durations and in-flight requests.  The
// path label is the matched chi route pattern so URL parameters do not
// multiply series.
func Metrics(m *prometheus.ViewerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.TrackActiveRequest(r.Method)
			defer done()

			start := time.Now()
			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			path := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					path = p
				}
			}
			m.RecordHTTPRequest(r.Method, path, wrapped.statusCode, time.Since(start))
		})
	}
}

//Personal.AI order the ending
