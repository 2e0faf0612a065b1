package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/trackvault/pkg/configs"
)

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.MetricsConfig{Enabled: true, Path: "/metrics", RuntimeMetrics: true, Labels: map[string]string{"version": "test"}}
	require.NoError(t, InitMetrics(cfg))
	require.NoError(t, InitMetrics(cfg))

	before := testutil.ToFloat64(OperationCounter.WithLabelValues("project.create", "error"))
	ObserveOperation("project.create", errors.New("boom"))
	ObserveOperation("project.create", nil)
	assert.InDelta(t, before+1, testutil.ToFloat64(OperationCounter.WithLabelValues("project.create", "error")), 0)

	e := gin.New()
	require.NoError(t, StartMetricsServer(cfg, e))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `trackvault_operations_total{operation="project.create",result="ok",version="test"}`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestMetricsDisabled(t *testing.T) {
	e := gin.New()
	require.NoError(t, StartMetricsServer(configs.MetricsConfig{}, e))

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
