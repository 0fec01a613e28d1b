package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func entityRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Route("/api/v1/entities/{entity}", func(r chi.Router) {
		r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{}"))
		})
		r.Post("/records", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		r.Delete("/records/{key}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestMiddleware_LabelsRouteAndEntity(t *testing.T) {
	h := entityRouter()

	tests := []struct {
		method string
		path   string
		route  string
		entity string
		status string
	}{
		{"GET", "/api/v1/entities/Article/search?q=hello", "/api/v1/entities/{entity}/search", "Article", "200"},
		{"POST", "/api/v1/entities/Note/records", "/api/v1/entities/{entity}/records", "Note", "201"},
		{"DELETE", "/api/v1/entities/Article/records/42", "/api/v1/entities/{entity}/records/{key}", "Article", "404"},
		{"GET", "/health", "/health", "", "200"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.entity, tc.status))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, http.NoBody))

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.entity, tc.status))
			if after != before+1 {
				t.Errorf("requests_total{%s %s %s %s} = %f, want %f",
					tc.method, tc.route, tc.entity, tc.status, after, before+1)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	h := entityRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "", "404"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/no/such/path", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "", "404"))
	if after != before+1 {
		t.Errorf("unmatched requests_total = %f, want %f", after, before+1)
	}
}

func TestRouteLabels_NoRouteContext(t *testing.T) {
	route, entity := routeLabels(httptest.NewRequest("GET", "/x", http.NoBody))
	if route != "unknown" || entity != "" {
		t.Errorf("routeLabels() = %q, %q; want unknown and empty", route, entity)
	}
}
