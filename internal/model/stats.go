package model

// Stats mirrors GET /api/stats.
type Stats struct {
	TotalAssessments     int64            `json:"totalAssessments" yaml:"total_assessments"`
	CriticalCount        int64            `json:"criticalCount" yaml:"critical_count"`
	HighCount            int64            `json:"highCount" yaml:"high_count"`
	MediumCount          int64            `json:"mediumCount" yaml:"medium_count"`
	LowCount             int64            `json:"lowCount" yaml:"low_count"`
	AverageAsbestosRisk  float64          `json:"averageAsbestosRisk" yaml:"average_asbestos_risk"`
	AverageWaterRisk     float64          `json:"averageWaterRisk" yaml:"average_water_risk"`
	AverageOverallRisk   float64          `json:"averageOverallRisk" yaml:"average_overall_risk"`
	RiskDistribution     map[string]int64 `json:"riskDistribution,omitempty" yaml:"risk_distribution,omitempty"`
	SiteTypeDistribution map[string]int64 `json:"siteTypeDistribution,omitempty" yaml:"site_type_distribution,omitempty"`
}

// AreaSignalSummary mirrors the per-area block of the backend signal stats.
type AreaSignalSummary struct {
	AreaName                 string `json:"areaName" yaml:"area_name"`
	TotalSignals             int64  `json:"totalSignals" yaml:"total_signals"`
	RespiratoryElevated      int64  `json:"respiratoryElevated" yaml:"respiratory_elevated"`
	GastrointestinalElevated int64  `json:"gastrointestinalElevated" yaml:"gastrointestinal_elevated"`
	SkinElevated             int64  `json:"skinElevated" yaml:"skin_elevated"`
	HasRisk                  bool   `json:"hasRisk" yaml:"has_risk"`
}

// HealthSignalStats mirrors GET /api/health-signals/stats.
type HealthSignalStats struct {
	TotalSignals    int64                        `json:"totalSignals" yaml:"total_signals"`
	ElevatedSignals int64                        `json:"elevatedSignals" yaml:"elevated_signals"`
	NormalSignals   int64                        `json:"normalSignals" yaml:"normal_signals"`
	SignalsByType   map[string]int64             `json:"signalsByType,omitempty" yaml:"signals_by_type,omitempty"`
	ElevatedByType  map[string]int64             `json:"elevatedByType,omitempty" yaml:"elevated_by_type,omitempty"`
	SignalsByArea   map[string]AreaSignalSummary `json:"signalsByArea,omitempty" yaml:"signals_by_area,omitempty"`
}

// AreasWithRisk counts areas the backend flagged with hasRisk.
func (s *HealthSignalStats) AreasWithRisk() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, a := range s.SignalsByArea {
		if a.HasRisk {
			n++
		}
	}
	return n
}
