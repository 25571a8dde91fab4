package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstream(t *testing.T) {
	ObserveUpstream("metrics-test", 200, 150*time.Millisecond)
	ObserveUpstream("metrics-test", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(UpstreamRequests.WithLabelValues("metrics-test", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(UpstreamRequests.WithLabelValues("metrics-test", "0")))
}

func TestHandler(t *testing.T) {
	Transitions.WithLabelValues("loaded").Inc()
	ObserveUpstream("handler-test", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `weatherdash_transitions_total{state="loaded"}`)
	assert.Contains(t, string(body), "weatherdash_upstream_request_duration_seconds")
}
