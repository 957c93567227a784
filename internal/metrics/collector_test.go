package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector("coachsim", zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.httpRequestDuration)
	assert.NotNil(t, collector.llmStepsTotal)
	assert.NotNil(t, collector.llmStepDuration)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector("coachsim", zap.NewNop())

	collector.RecordHTTPRequest("GET", "/api/users", 200, 100*time.Millisecond, 2048)

	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)

	collector.RecordHTTPRequest("GET", "/api/users", 200, 50*time.Millisecond, 1024)

	value := testutil.ToFloat64(collector.httpRequestsTotal.WithLabelValues("GET", "/api/users", "2xx"))
	assert.Equal(t, 2.0, value)
}

func TestCollector_RecordLLMStep(t *testing.T) {
	collector := NewCollector("coachsim", zap.NewNop())

	collector.RecordLLMStep("intake_summary", 500*time.Millisecond, nil)
	collector.RecordLLMStep("intake_summary", 200*time.Millisecond, errors.New("timeout"))

	success := testutil.ToFloat64(collector.llmStepsTotal.WithLabelValues("intake_summary", "success"))
	assert.Equal(t, 1.0, success)

	failed := testutil.ToFloat64(collector.llmStepsTotal.WithLabelValues("intake_summary", "error"))
	assert.Equal(t, 1.0, failed)

	count := testutil.CollectAndCount(collector.llmStepDuration)
	assert.Greater(t, count, 0)
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector("coachsim", zap.NewNop())
	collector.RecordHTTPRequest("POST", "/api/pipeline/{user_a_id}/{user_b_id}", 200, 45*time.Second, 4096)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coachsim_http_requests_total")
	assert.Contains(t, rec.Body.String(), "coachsim_http_request_duration_seconds")
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(301))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(502))
	assert.Equal(t, "unknown", statusClass(42))
}
