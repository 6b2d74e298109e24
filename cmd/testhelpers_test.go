package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/pkg/healthmap"
)

func ptr(f float64) *float64 { return &f }

func testAssessments() []model.Assessment {
	return []model.Assessment{
		{
			ID: 1, Latitude: 31.5, Longitude: 34.46, SiteType: model.SiteTypeDebris,
			AsbestosRisk: 90, WaterRisk: 60, OverallRisk: 85, Priority: model.PriorityCritical,
			Notes: `collapsed "school" wing`, CreatedAt: "2026-03-01T10:00:00",
		},
		{
			ID: 2, Latitude: 31.6, Longitude: 34.5, SiteType: model.SiteTypeWater,
			AsbestosRisk: 10, WaterRisk: 30, OverallRisk: 20, Priority: model.PriorityLow,
			CreatedAt: "2026-03-02T10:00:00",
		},
	}
}

func testSignals() []model.HealthSignal {
	return []model.HealthSignal{
		{
			ID: 10, AreaID: "1", AreaName: "Shati", SignalType: model.SignalRespiratory,
			SignalLevel: model.LevelElevated, SignalDate: "2026-03-03", CreatedAt: "2026-03-03T08:00:00",
		},
		{
			ID: 11, AreaID: "north", AreaName: "North", Latitude: ptr(31.605), Longitude: ptr(34.505),
			SignalType: model.SignalSkin, SignalLevel: model.LevelNormal, SignalDate: "2026-03-04",
			CreatedAt: "2026-03-04T08:00:00",
		},
	}
}

// fakeBackend serves the HealthMap REST API from fixed data. Paths in
// fail answer 500.
type fakeBackend struct {
	mu      sync.Mutex
	fail    map[string]bool
	created []model.HealthSignalRequest
}

func newFakeBackend(t *testing.T, fail ...string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{fail: make(map[string]bool)}
	for _, p := range fail {
		fb.fail[p] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/assessments", fb.serve(testAssessments()))
	mux.HandleFunc("GET /api/assessments/priorities", fb.serve(testAssessments()))
	mux.HandleFunc("GET /api/assessments/recent", fb.serve(testAssessments()[1:]))
	mux.HandleFunc("GET /api/assessments/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, a := range testAssessments() {
			if r.PathValue("id") == strconv.FormatInt(a.ID, 10) {
				fb.serve(a)(w, r)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/health-signals", fb.serve(testSignals()))
	mux.HandleFunc("GET /api/health-signals/recent", fb.serve(testSignals()))
	mux.HandleFunc("GET /api/health-signals/stats", fb.serve(model.HealthSignalStats{
		TotalSignals: 2, ElevatedSignals: 1, NormalSignals: 1,
		SignalsByArea: map[string]model.AreaSignalSummary{
			"1":     {AreaName: "Shati", TotalSignals: 1, RespiratoryElevated: 1, HasRisk: true},
			"north": {AreaName: "North", TotalSignals: 1},
		},
	}))
	mux.HandleFunc("GET /api/stats", fb.serve(model.Stats{
		TotalAssessments: 2, CriticalCount: 1, LowCount: 1,
		AverageAsbestosRisk: 50, AverageWaterRisk: 45, AverageOverallRisk: 52.5,
	}))
	mux.HandleFunc("POST /api/health-signals", func(w http.ResponseWriter, r *http.Request) {
		if fb.failing(r.URL.Path) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req model.HealthSignalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.mu.Lock()
		fb.created = append(fb.created, req)
		id := int64(100 + len(fb.created))
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(model.HealthSignal{ID: id, AreaID: req.AreaID, AreaName: req.AreaName})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) failing(path string) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.fail[path]
}

func (fb *fakeBackend) requests() []model.HealthSignalRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]model.HealthSignalRequest(nil), fb.created...)
}

func (fb *fakeBackend) serve(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if fb.failing(r.URL.Path) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func testLoader(baseURL string) *dashboard.Loader {
	return dashboard.NewLoader(healthmap.NewClient(baseURL), nil)
}

func testSnapshot() *dashboard.Snapshot {
	return &dashboard.Snapshot{
		Assessments:   testAssessments(),
		HealthSignals: testSignals(),
	}
}
