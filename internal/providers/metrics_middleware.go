package providers

import (
	"net/http"

	"github.com/felixge/httpsnoop"
)

// MetricsMiddleware records request count and latency per route template so
// path parameters (device ids, popup ids) do not explode label cardinality.
func MetricsMiddleware(metrics MetricsProviderInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			endpoint := RouteTemplate(r)
			metrics.IncRequestsTotal(endpoint, m.Code)
			metrics.ObserveRequestDuration(endpoint, m.Duration)
		})
	}
}

// AccessLogMiddleware writes one line per request to the get or post log.
func AccessLogMiddleware(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Infof(GetLogTypeByRequestType(r.Method), "%s %s %d %s %dB from %s",
				r.Method, r.URL.Path, m.Code, m.Duration, m.Written, r.RemoteAddr)
		})
	}
}
