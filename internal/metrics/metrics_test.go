package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserversRecord(t *testing.T) {
	Init()
	Init() // idempotent

	before := testutil.ToFloat64(parsePagesTotal.WithLabelValues("stored"))
	ObservePage("stored")
	require.Equal(t, before+1, testutil.ToFloat64(parsePagesTotal.WithLabelValues("stored")))

	beforeSnips := testutil.ToFloat64(parseSnippetsTotal)
	AddSnippets(3)
	AddSnippets(0)
	require.Equal(t, beforeSnips+3, testutil.ToFloat64(parseSnippetsTotal))

	beforeBatches := testutil.ToFloat64(parseBatchesTotal.WithLabelValues("completed"))
	ObserveBatch("completed", 50*time.Millisecond)
	require.Equal(t, beforeBatches+1, testutil.ToFloat64(parseBatchesTotal.WithLabelValues("completed")))

	IncActiveWorkers()
	IncActiveWorkers()
	DecActiveWorkers()
	require.Equal(t, float64(1), testutil.ToFloat64(parseActiveWorkers))
	DecActiveWorkers()
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "parse_batches_total")
}
