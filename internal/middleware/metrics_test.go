package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vitpintodas/comem-travel-log-api/internal/metrics"
	"github.com/vitpintodas/comem-travel-log-api/internal/middleware"
)

// TestPrometheusMetrics_labelsByRoutePattern verifies that requests for
// different ids are counted under the same route label.
func TestPrometheusMetrics_labelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Get("/api/trips/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/trips/{id}", "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/trips/"+id, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
