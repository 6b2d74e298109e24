package aggregate

import "github.com/sells-group/healthmap-cli/internal/model"

// Stats summarizes a set of assessments.
type Stats struct {
	Total    int `json:"total" yaml:"total"`
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Low      int `json:"low" yaml:"low"`
	// Unbanded counts assessments whose priority is not a known band.
	Unbanded int `json:"unbanded" yaml:"unbanded"`

	AverageAsbestosRisk float64 `json:"averageAsbestosRisk" yaml:"average_asbestos_risk"`
	AverageWaterRisk    float64 `json:"averageWaterRisk" yaml:"average_water_risk"`
	AverageOverallRisk  float64 `json:"averageOverallRisk" yaml:"average_overall_risk"`

	BySiteType            map[model.SiteType]int     `json:"bySiteType" yaml:"by_site_type"`
	AverageRiskBySiteType map[model.SiteType]float64 `json:"averageRiskBySiteType" yaml:"average_risk_by_site_type"`
}

// Count returns the number of assessments in band p.
func (s Stats) Count(p model.Priority) int {
	switch p {
	case model.PriorityCritical:
		return s.Critical
	case model.PriorityHigh:
		return s.High
	case model.PriorityMedium:
		return s.Medium
	case model.PriorityLow:
		return s.Low
	}
	return 0
}

// AssessmentStats counts assessments per priority band and site type and
// averages the three risk scores. Averages over no assessments are zero.
// Sums are kept as integers so the result does not depend on input order.
func AssessmentStats(assessments []model.Assessment) Stats {
	s := Stats{
		BySiteType:            make(map[model.SiteType]int),
		AverageRiskBySiteType: make(map[model.SiteType]float64),
	}

	var asbestos, water, overall int64
	overallByType := make(map[model.SiteType]int64)
	for _, a := range assessments {
		s.Total++
		switch a.Priority {
		case model.PriorityCritical:
			s.Critical++
		case model.PriorityHigh:
			s.High++
		case model.PriorityMedium:
			s.Medium++
		case model.PriorityLow:
			s.Low++
		default:
			s.Unbanded++
		}
		asbestos += int64(a.AsbestosRisk)
		water += int64(a.WaterRisk)
		overall += int64(a.OverallRisk)

		s.BySiteType[a.SiteType]++
		overallByType[a.SiteType] += int64(a.OverallRisk)
	}

	s.AverageAsbestosRisk = mean(asbestos, s.Total)
	s.AverageWaterRisk = mean(water, s.Total)
	s.AverageOverallRisk = mean(overall, s.Total)
	for t, n := range s.BySiteType {
		s.AverageRiskBySiteType[t] = mean(overallByType[t], n)
	}
	return s
}

func mean(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
