package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsRequestsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())

	mux := chi.NewRouter()
	mux.Use(m.Handler)
	mux.Get("/api/v1/auth/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	got := promtestutil.ToFloat64(m.requests.WithLabelValues("/api/v1/auth/health", http.MethodGet, "200"))
	assert.Equal(t, float64(3), got)
}

func TestMetrics_LabelsErrorStatus(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())

	mux := chi.NewRouter()
	mux.Use(m.Handler)
	mux.Post("/api/v1/auth/send-code", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/send-code", nil))

	got := promtestutil.ToFloat64(m.requests.WithLabelValues("/api/v1/auth/send-code", http.MethodPost, "429"))
	assert.Equal(t, float64(1), got)
}
