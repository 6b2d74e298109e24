package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/internal/resilience"
)

type mockLoader struct {
	snap  *dashboard.Snapshot
	err   error
	calls atomic.Int32
}

func (m *mockLoader) Load(context.Context, dashboard.Sources) (*dashboard.Snapshot, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func sampleSnapshot() *dashboard.Snapshot {
	return &dashboard.Snapshot{
		Assessments: []model.Assessment{
			{ID: 1, OverallRisk: 85, Priority: model.PriorityCritical},
			{ID: 2, OverallRisk: 90, Priority: model.PriorityLow},
			{ID: 3, OverallRisk: 12, Priority: model.PriorityLow},
		},
		HealthSignals: []model.HealthSignal{
			{ID: 10, AreaID: "rafah", SignalType: model.SignalSkin, SignalLevel: model.LevelElevated},
			{ID: 11, AreaID: "gaza-city", SignalType: model.SignalSkin, SignalLevel: model.LevelNormal},
		},
		Failed:   []dashboard.Source{dashboard.SourceSignalStats},
		LoadedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCollector_Collect(t *testing.T) {
	c := NewCollector(&mockLoader{snap: sampleSnapshot()})

	q, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, q.Assessments.Total)
	assert.Equal(t, 2, q.Signals.Total)
	assert.Equal(t, []int64{1}, q.CriticalSites)
	require.Len(t, q.RiskAreas, 1)
	assert.Equal(t, "rafah", q.RiskAreas[0].AreaID)
	require.Len(t, q.Mismatches, 1)
	assert.Equal(t, int64(2), q.Mismatches[0].AssessmentID)
	assert.Equal(t, []dashboard.Source{dashboard.SourceSignalStats}, q.Unavailable)
}

func TestCollector_LoadError(t *testing.T) {
	c := NewCollector(&mockLoader{err: dashboard.ErrPrimaryUnavailable})

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboard.ErrPrimaryUnavailable))
}

func TestChecker_Check(t *testing.T) {
	cfg := thresholds()
	checker := NewChecker(NewCollector(&mockLoader{snap: sampleSnapshot()}), NewAlerter(cfg, nil), cfg)

	res, err := checker.Check(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Alerts, 4)
	assert.Equal(t, 0, res.Sent)
}

func TestChecker_RunChecksImmediatelyAndStopsOnCancel(t *testing.T) {
	loader := &mockLoader{snap: sampleSnapshot()}
	cfg := config.MonitoringConfig{CheckIntervalSecs: 60, CriticalSiteThreshold: 1}
	checker := NewChecker(NewCollector(loader), NewAlerter(cfg, nil), cfg)

	results := make(chan *CheckResult, 1)
	checker.OnCheck = func(r *CheckResult) { results <- r }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	select {
	case r := <-results:
		assert.NotEmpty(t, r.Alerts)
	case <-time.After(2 * time.Second):
		t.Fatal("first check did not run immediately")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestChecker_RunSurvivesLoadErrors(t *testing.T) {
	loader := &mockLoader{err: errors.New("backend down")}
	cfg := config.MonitoringConfig{CheckIntervalSecs: 60}
	checker := NewChecker(NewCollector(loader), NewAlerter(cfg, nil), cfg)

	var called atomic.Bool
	checker.OnCheck = func(*CheckResult) { called.Store(true) }

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	checker.Run(ctx)

	assert.False(t, called.Load())
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestChecker_BreakerSkipsChecksWhileBackendDown(t *testing.T) {
	loader := &mockLoader{err: errors.New("backend down")}
	cfg := config.MonitoringConfig{CheckIntervalSecs: 60, BreakerThreshold: 2, BreakerResetSecs: 3600}
	checker := NewChecker(NewCollector(loader), NewAlerter(cfg, nil), cfg)
	log := zap.NewNop()

	for range 5 {
		checker.runOnce(context.Background(), log)
	}

	assert.Equal(t, int32(2), loader.calls.Load())
	assert.Equal(t, resilience.CircuitOpen, checker.BreakerState())
}

func TestChecker_BreakerDisabled(t *testing.T) {
	loader := &mockLoader{err: errors.New("backend down")}
	cfg := config.MonitoringConfig{CheckIntervalSecs: 60}
	checker := NewChecker(NewCollector(loader), NewAlerter(cfg, nil), cfg)

	for range 4 {
		checker.runOnce(context.Background(), zap.NewNop())
	}

	assert.Equal(t, int32(4), loader.calls.Load())
	assert.Equal(t, resilience.CircuitClosed, checker.BreakerState())
}

func TestCheckPriorities(t *testing.T) {
	got := CheckPriorities([]model.Assessment{
		{ID: 1, OverallRisk: 70, Priority: model.PriorityCritical},
		{ID: 2, OverallRisk: 69, Priority: model.PriorityCritical},
		{ID: 3, OverallRisk: 30, Priority: model.PriorityMedium},
		{ID: 4, OverallRisk: 5, Priority: ""},
	})
	require.Len(t, got, 2)
	assert.Equal(t, Mismatch{AssessmentID: 2, OverallRisk: 69, Priority: model.PriorityCritical, Expected: model.PriorityHigh}, got[0])
	assert.Equal(t, int64(4), got[1].AssessmentID)

	assert.Empty(t, CheckPriorities(nil))
}
