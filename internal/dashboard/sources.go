package dashboard

// Source names one backend read of a load.
type Source string

const (
	SourceAssessments       Source = "assessments"
	SourceRecentAssessments Source = "recent_assessments"
	SourceHealthSignals     Source = "health_signals"
	SourceSignalStats       Source = "health_signal_stats"
	SourceStats             Source = "stats"
)

// Sources selects which auxiliary reads accompany the primary assessment
// load. The assessment list is always loaded.
type Sources struct {
	// PriorityOrder loads assessments from the priorities endpoint, which
	// returns them most urgent first.
	PriorityOrder     bool
	RecentAssessments bool
	HealthSignals     bool
	// SignalDays restricts health signals to the last N days. Zero loads
	// every signal.
	SignalDays  int
	SignalStats bool
	Stats       bool
}

// DashboardSources is the overview load: every source.
func DashboardSources() Sources {
	return Sources{
		RecentAssessments: true,
		HealthSignals:     true,
		SignalStats:       true,
		Stats:             true,
	}
}

// ReportSources loads what the export reports need.
func ReportSources() Sources {
	return Sources{HealthSignals: true, Stats: true}
}

// AnalyticsSources loads what area and correlation views need.
func AnalyticsSources() Sources {
	return Sources{HealthSignals: true, SignalStats: true, Stats: true}
}

// PrioritySources loads assessments in priority order with the last week
// of signals.
func PrioritySources() Sources {
	return Sources{PriorityOrder: true, HealthSignals: true, SignalDays: 7}
}

// SignalsSources loads the recent signal window and backend signal stats.
func SignalsSources(days int) Sources {
	if days <= 0 {
		days = 7
	}
	return Sources{HealthSignals: true, SignalDays: days, SignalStats: true}
}
