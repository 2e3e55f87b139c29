package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersExposed(t *testing.T) {
	before := testutil.ToFloat64(InferenceTotal.WithLabelValues(OutcomeBusy))
	InferenceTotal.WithLabelValues(OutcomeBusy).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(InferenceTotal.WithLabelValues(OutcomeBusy)))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "floorplan_inference_total")
}
