package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const unknownRoute = "unknown"

var httpLabels = []string{"method", "route", "entity", "status"}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and entity.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		httpLabels,
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, entity and status.",
		},
		httpLabels,
	)
)

// Middleware counts and times requests. Labels are taken after the handler
// returns, when chi has resolved the route pattern and {entity}.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			route, entity := routeLabels(r)
			labels := prometheus.Labels{
				"method": r.Method,
				"route":  route,
				"entity": entity,
				"status": strconv.Itoa(code),
			}
			httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			httpRequestsTotal.With(labels).Inc()
		})
	}
}

// routeLabels returns the matched chi pattern and the {entity} parameter.
// Unmatched requests share one route label so raw paths never become series.
func routeLabels(r *http.Request) (route, entity string) {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return unknownRoute, ""
	}
	if route = rc.RoutePattern(); route == "" {
		route = unknownRoute
	}
	return route, rc.URLParam("entity")
}
