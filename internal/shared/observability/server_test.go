package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServerHandler(t *testing.T) {
	FilesScanned.Inc()
	RulesApplied.WithLabelValues("core.trivial-getter").Inc()

	h := NewMetricsServer(":0").Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ccat_files_scanned_total")
	assert.Contains(t, rec.Body.String(), `ccat_summary_rules_applied_total{rule="core.trivial-getter"}`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"up"}`, rec.Body.String())
}

func TestInitTracingDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{ServiceName: "ccat"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer.Start(context.Background(), "noop")
	span.End()
}

func TestStopBeforeStart(t *testing.T) {
	assert.NoError(t, NewMetricsServer(":0").Stop(context.Background()))
}
