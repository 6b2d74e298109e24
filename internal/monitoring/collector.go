package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/model"
)

// QualitySnapshot holds a point-in-time view of backend data.
type QualitySnapshot struct {
	Assessments aggregate.Stats        `json:"assessments"`
	Signals     aggregate.SignalTotals `json:"signals"`
	RiskAreas   []model.AreaSummary    `json:"risk_areas,omitempty"`
	Mismatches  []Mismatch             `json:"mismatches,omitempty"`
	// CriticalSites lists CRITICAL assessment ids in load order.
	CriticalSites []int64            `json:"critical_sites,omitempty"`
	Unavailable   []dashboard.Source `json:"unavailable,omitempty"`
	CollectedAt   time.Time          `json:"collected_at"`
}

// Loader loads a dashboard snapshot.
type Loader interface {
	Load(ctx context.Context, src dashboard.Sources) (*dashboard.Snapshot, error)
}

// Collector builds quality snapshots from dashboard loads.
type Collector struct {
	loader Loader
}

// NewCollector creates a new collector.
func NewCollector(l Loader) *Collector {
	return &Collector{loader: l}
}

// Collect loads the dashboard sources and summarizes them.
func (c *Collector) Collect(ctx context.Context) (*QualitySnapshot, error) {
	snap, err := c.loader.Load(ctx, dashboard.DashboardSources())
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: load")
	}
	return Summarize(snap), nil
}

// Summarize derives a quality snapshot from a loaded dashboard snapshot.
func Summarize(snap *dashboard.Snapshot) *QualitySnapshot {
	q := &QualitySnapshot{
		Assessments: aggregate.AssessmentStats(snap.Assessments),
		Signals:     aggregate.SignalCounts(snap.HealthSignals),
		RiskAreas:   aggregate.RiskAreas(aggregate.AreaSummaries(snap.HealthSignals)),
		Mismatches:  CheckPriorities(snap.Assessments),
		Unavailable: snap.Failed,
		CollectedAt: snap.LoadedAt,
	}
	for _, a := range snap.Assessments {
		if a.Priority == model.PriorityCritical {
			q.CriticalSites = append(q.CriticalSites, a.ID)
		}
	}
	return q
}
