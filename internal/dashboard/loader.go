// Package dashboard loads assessments and their auxiliary data from the
// backend in one concurrent fan-out, tolerating auxiliary failures.
package dashboard

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// LoadFailedMessage is shown when the primary source cannot be loaded.
const LoadFailedMessage = "Failed to load dashboard data. Make sure the backend is running."

// ErrPrimaryUnavailable is returned when the assessment list cannot be
// loaded. No partial snapshot accompanies it.
var ErrPrimaryUnavailable = errors.New("dashboard: primary source unavailable")

// Backend is the subset of the HealthMap client the loader reads from.
type Backend interface {
	ListAssessments(ctx context.Context) ([]model.Assessment, error)
	PriorityAssessments(ctx context.Context) ([]model.Assessment, error)
	RecentAssessments(ctx context.Context) ([]model.Assessment, error)
	ListHealthSignals(ctx context.Context) ([]model.HealthSignal, error)
	RecentHealthSignals(ctx context.Context, days int) ([]model.HealthSignal, error)
	HealthSignalStats(ctx context.Context) (*model.HealthSignalStats, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// Snapshot is the combined result of one load. Auxiliary slots that failed
// are empty and named in Failed.
type Snapshot struct {
	Assessments       []model.Assessment       `json:"assessments" yaml:"assessments"`
	RecentAssessments []model.Assessment       `json:"recentAssessments,omitempty" yaml:"recent_assessments,omitempty"`
	HealthSignals     []model.HealthSignal     `json:"healthSignals" yaml:"health_signals"`
	SignalStats       *model.HealthSignalStats `json:"signalStats,omitempty" yaml:"signal_stats,omitempty"`
	Stats             *model.Stats             `json:"stats,omitempty" yaml:"stats,omitempty"`
	SignalDays        int                      `json:"signalDays,omitempty" yaml:"signal_days,omitempty"`
	Failed            []Source                 `json:"failed,omitempty" yaml:"failed,omitempty"`
	LoadedAt          time.Time                `json:"loadedAt" yaml:"loaded_at"`
}

// Degraded reports whether any auxiliary source failed.
func (s *Snapshot) Degraded() bool {
	return len(s.Failed) > 0
}

// HasFailed reports whether src failed during the load.
func (s *Snapshot) HasFailed(src Source) bool {
	return slices.Contains(s.Failed, src)
}

// Loader runs concurrent loads against a Backend.
type Loader struct {
	backend Backend
	metrics *Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(b Backend, metrics *Metrics) *Loader {
	return &Loader{
		backend: b,
		metrics: metrics,
		log:     zap.L().With(zap.String("component", "dashboard")),
		now:     time.Now,
	}
}

// Load issues every selected read concurrently and waits for all of them.
// It fails only when the assessment list fails; each other read that
// fails leaves its slot empty and is recorded in Snapshot.Failed. Each
// source gets a single attempt and nothing is cached between loads.
func (l *Loader) Load(ctx context.Context, src Sources) (*Snapshot, error) {
	snap := &Snapshot{SignalDays: src.SignalDays}

	// Each goroutine writes only its own slot and error.
	var (
		g                                          errgroup.Group
		recentErr, signalsErr, sigStatsErr, stsErr error
	)

	g.Go(func() error {
		var err error
		if src.PriorityOrder {
			snap.Assessments, err = timed(ctx, l, SourceAssessments, l.backend.PriorityAssessments)
		} else {
			snap.Assessments, err = timed(ctx, l, SourceAssessments, l.backend.ListAssessments)
		}
		return err
	})
	if src.RecentAssessments {
		g.Go(func() error {
			snap.RecentAssessments, recentErr = timed(ctx, l, SourceRecentAssessments, l.backend.RecentAssessments)
			return nil
		})
	}
	if src.HealthSignals {
		g.Go(func() error {
			if src.SignalDays > 0 {
				snap.HealthSignals, signalsErr = timed(ctx, l, SourceHealthSignals, func(ctx context.Context) ([]model.HealthSignal, error) {
					return l.backend.RecentHealthSignals(ctx, src.SignalDays)
				})
			} else {
				snap.HealthSignals, signalsErr = timed(ctx, l, SourceHealthSignals, l.backend.ListHealthSignals)
			}
			return nil
		})
	}
	if src.SignalStats {
		g.Go(func() error {
			snap.SignalStats, sigStatsErr = timed(ctx, l, SourceSignalStats, l.backend.HealthSignalStats)
			return nil
		})
	}
	if src.Stats {
		g.Go(func() error {
			snap.Stats, stsErr = timed(ctx, l, SourceStats, l.backend.Stats)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.metrics.observeLoad("failed")
		l.log.Error("primary source failed", zap.String("source", string(SourceAssessments)), zap.Error(err))
		return nil, eris.Wrapf(ErrPrimaryUnavailable, "load assessments: %v", err)
	}

	for _, f := range []struct {
		src Source
		err error
	}{
		{SourceRecentAssessments, recentErr},
		{SourceHealthSignals, signalsErr},
		{SourceSignalStats, sigStatsErr},
		{SourceStats, stsErr},
	} {
		if f.err == nil {
			continue
		}
		l.log.Warn("auxiliary source unavailable", zap.String("source", string(f.src)), zap.Error(f.err))
		snap.Failed = append(snap.Failed, f.src)
	}
	slices.Sort(snap.Failed)

	if snap.HasFailed(SourceHealthSignals) {
		snap.HealthSignals = nil
	}
	if snap.HasFailed(SourceRecentAssessments) {
		snap.RecentAssessments = nil
	}
	if snap.HasFailed(SourceSignalStats) {
		snap.SignalStats = nil
	}
	if snap.HasFailed(SourceStats) {
		snap.Stats = nil
	}

	if snap.Degraded() {
		l.metrics.observeLoad("degraded")
	} else {
		l.metrics.observeLoad("ok")
	}
	snap.LoadedAt = l.now()
	return snap, nil
}

func timed[T any](ctx context.Context, l *Loader, src Source, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fn(ctx)
	l.metrics.observeFetch(src, time.Since(start), err)
	return v, err
}
