package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveExtraction(t *testing.T) {
	m := New()
	m.ObserveExtraction(3, 2, 1)
	m.ObserveExtraction(0, 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedMatches))
}

func TestObserveLayout(t *testing.T) {
	m := New()
	m.ObserveLayout("force-directed", "ok", 20*time.Millisecond, 2)
	m.ObserveLayout("force-directed", "timeout", 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("force-directed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("force-directed", "timeout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedEdges))
}

func TestHandler(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("/health", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relgraph_http_requests_total")
}
