package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewLogger(LogConfig{Level: tt.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNewLogger_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LogConfig{Level: "info", Output: &buf, ServiceName: "catalog-recommender"})
	l.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "catalog-recommender", line["service"])
	assert.Equal(t, "hello", line["message"])
}

func TestAccessLog_InjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Output: &buf})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(logger))
	r.Get("/x", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Debug().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, buf.String(), `"message":"inside"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"request_id"`)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/products/{id}", http.MethodGet, "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/p1", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/products/{id}", http.MethodGet, "204"))
	assert.Equal(t, before+1, after)
}

func TestObserveRecommendation(t *testing.T) {
	beforeDegraded := testutil.ToFloat64(RetrievalDegradedTotal)
	beforeBudget := testutil.ToFloat64(FilterExclusionsTotal.WithLabelValues("budget"))

	ObserveRecommendation("keyword", true, map[string]int{"budget": 3, "out_of_stock": 0}, 0, 5*time.Millisecond)

	assert.Equal(t, beforeDegraded+1, testutil.ToFloat64(RetrievalDegradedTotal))
	assert.Equal(t, beforeBudget+3, testutil.ToFloat64(FilterExclusionsTotal.WithLabelValues("budget")))
}
