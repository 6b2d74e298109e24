// Package aggregate computes order-independent summary statistics over
// assessment and health signal snapshots.
package aggregate

import (
	"slices"
	"strings"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// AreaSummaries partitions signals by area id and counts elevated and
// normal signals per type. The result is sorted by area id. Any level
// other than ELEVATED counts as normal. Signals of an unknown type count
// toward the area total only.
func AreaSummaries(signals []model.HealthSignal) []model.AreaSummary {
	byArea := make(map[string]*model.AreaSummary)
	for _, s := range signals {
		sum, ok := byArea[s.AreaID]
		if !ok {
			sum = &model.AreaSummary{AreaID: s.AreaID}
			byArea[s.AreaID] = sum
		}
		sum.TotalSignals++

		// Smallest non-empty name keeps the label independent of input order.
		if s.AreaName != "" && (sum.AreaName == "" || s.AreaName < sum.AreaName) {
			sum.AreaName = s.AreaName
		}

		tc := typeCounts(sum, s.SignalType)
		if tc == nil {
			continue
		}
		switch s.SignalLevel {
		case model.LevelElevated:
			tc.Elevated++
			sum.HasRisk = true
		case model.LevelNormal:
			tc.Normal++
		}
	}

	out := make([]model.AreaSummary, 0, len(byArea))
	for _, sum := range byArea {
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b model.AreaSummary) int {
		return strings.Compare(a.AreaID, b.AreaID)
	})
	return out
}

// RiskAreas returns the summaries with HasRisk set, keeping their order.
func RiskAreas(summaries []model.AreaSummary) []model.AreaSummary {
	var out []model.AreaSummary
	for _, s := range summaries {
		if s.HasRisk {
			out = append(out, s)
		}
	}
	return out
}

func typeCounts(sum *model.AreaSummary, t model.SignalType) *model.TypeCounts {
	switch t {
	case model.SignalRespiratory:
		return &sum.Respiratory
	case model.SignalGastrointestinal:
		return &sum.Gastrointestinal
	case model.SignalSkin:
		return &sum.Skin
	}
	return nil
}
