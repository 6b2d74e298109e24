package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/report"
	"github.com/sells-group/healthmap-cli/pkg/healthmap"
)

func newTestRouter(t *testing.T, fail ...string) http.Handler {
	t.Helper()
	_, srv := newFakeBackend(t, fail...)
	reg := prometheus.NewRegistry()
	return newRouter(newMetricsLoader(healthmap.NewClient(srv.URL), reg), reg, []string{"*"}, config.MonitoringConfig{CriticalSiteThreshold: 1})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	rr := get(t, newTestRouter(t), "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Dashboard(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get(DegradedHeader))

	var view struct {
		Assessments struct {
			Total    int `json:"total"`
			Critical int `json:"critical"`
		} `json:"assessments"`
		Signals struct {
			Elevated int `json:"elevated"`
		} `json:"signals"`
		Alerts []struct {
			Type string `json:"type"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Assessments.Total)
	assert.Equal(t, 1, view.Assessments.Critical)
	assert.Equal(t, 1, view.Signals.Elevated)
	require.NotEmpty(t, view.Alerts)
	assert.Equal(t, "critical_sites", view.Alerts[0].Type)
}

func TestRouter_DashboardDegraded(t *testing.T) {
	rr := get(t, newTestRouter(t, "/api/stats", "/api/health-signals/stats"), "/api/dashboard")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "health_signal_stats,stats", rr.Header().Get(DegradedHeader))
}

func TestRouter_PrimaryFailure(t *testing.T) {
	rr := get(t, newTestRouter(t, "/api/assessments"), "/api/dashboard")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, dashboard.LoadFailedMessage, body["error"])
}

func TestRouter_Areas(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/areas?days=3&level=elevated")
	require.Equal(t, http.StatusOK, rr.Code)

	var view signalsView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, 3, view.Days)
	assert.Equal(t, []string{"1"}, view.RiskAreas)
	assert.Equal(t, 1, view.BackendRiskAreas)
	require.Len(t, view.Signals, 1)
	assert.Equal(t, int64(10), view.Signals[0].ID)
	assert.Len(t, view.Areas, 2)
}

func TestRouter_AreasBadParams(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/areas?days=zero").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/areas?days=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/areas?level=loud").Code)
}

func TestRouter_Correlations(t *testing.T) {
	rr := get(t, newTestRouter(t), "/api/correlations")
	require.Equal(t, http.StatusOK, rr.Code)

	var out []geo.Correlation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, geo.MatchAreaID, out[0].Kind)
	assert.Equal(t, int64(10), out[0].Signal.ID)
	assert.Equal(t, geo.MatchProximity, out[1].Kind)
	assert.Equal(t, int64(11), out[1].Signal.ID)
}

func TestRouter_CorrelationsWithoutSignals(t *testing.T) {
	h := newTestRouter(t, "/api/health-signals")
	rr := get(t, h, "/api/correlations?matched=true")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "health_signals", rr.Header().Get(DegradedHeader))

	var out []geo.Correlation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Empty(t, out)
}

func TestRouter_ExportSummary(t *testing.T) {
	rr := get(t, newTestRouter(t), "/export/summary")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Regexp(t, `attachment; filename="healthmap-summary-\d{4}-\d{2}-\d{2}\.txt"`, rr.Header().Get("Content-Disposition"))
	body := rr.Body.String()
	assert.Contains(t, body, "HEALTHMAP SUMMARY REPORT")
	assert.Contains(t, body, "Site #1 - DEBRIS - Risk: 85% - Location: (31.5000, 34.4600)")
	assert.Contains(t, body, "- Overall Risk: 52.5%")
}

func TestRouter_ExportPriorities(t *testing.T) {
	rr := get(t, newTestRouter(t), "/export/priorities?priority=critical")
	require.Equal(t, http.StatusOK, rr.Code)

	want := report.AssessmentsCSV(testAssessments()[:1])
	assert.Equal(t, want, rr.Body.String())
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
}

func TestRouter_ExportErrors(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/export/pdf").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/export/priorities?priority=urgent").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/export/priorities?sort=name").Code)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, get(t, h, "/api/dashboard").Code)

	rr := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `healthmap_loader_loads_total{outcome="ok"} 1`)
	assert.Contains(t, rr.Body.String(), "healthmap_loader_fetch_duration_seconds")
}

func TestRouter_CORSPreflight(t *testing.T) {
	_, srv := newFakeBackend(t)
	reg := prometheus.NewRegistry()
	h := newRouter(testLoader(srv.URL), reg, []string{"https://dash.example.org"}, config.MonitoringConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "https://dash.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://dash.example.org", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewMetricsRegistry(t *testing.T) {
	reg := newMetricsRegistry()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
