package aggregate

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// AssessmentFilter selects assessments. Empty fields match everything.
type AssessmentFilter struct {
	Priorities []model.Priority
	SiteTypes  []model.SiteType
}

// FilterAssessments returns the assessments matching f, in input order.
func FilterAssessments(assessments []model.Assessment, f AssessmentFilter) []model.Assessment {
	out := make([]model.Assessment, 0, len(assessments))
	for _, a := range assessments {
		if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, a.Priority) {
			continue
		}
		if len(f.SiteTypes) > 0 && !slices.Contains(f.SiteTypes, a.SiteType) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortKey orders an assessment listing.
type SortKey string

const (
	SortRisk     SortKey = "risk"
	SortDate     SortKey = "date"
	SortAsbestos SortKey = "asbestos"
	SortWater    SortKey = "water"
)

// ParseSortKey validates a sort key name. Empty means SortRisk.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortRisk, nil
	case SortRisk, SortDate, SortAsbestos, SortWater:
		return k, nil
	}
	return "", eris.Errorf("aggregate: unknown sort key %q (want risk, date, asbestos or water)", s)
}

// SortAssessments returns a copy sorted descending by key. Equal keys keep
// their input order.
func SortAssessments(assessments []model.Assessment, key SortKey) []model.Assessment {
	out := slices.Clone(assessments)
	var cmpFn func(a, b model.Assessment) int
	switch key {
	case SortDate:
		cmpFn = func(a, b model.Assessment) int { return b.Created().Compare(a.Created()) }
	case SortAsbestos:
		cmpFn = func(a, b model.Assessment) int { return cmp.Compare(b.AsbestosRisk, a.AsbestosRisk) }
	case SortWater:
		cmpFn = func(a, b model.Assessment) int { return cmp.Compare(b.WaterRisk, a.WaterRisk) }
	default:
		cmpFn = func(a, b model.Assessment) int { return cmp.Compare(b.OverallRisk, a.OverallRisk) }
	}
	slices.SortStableFunc(out, cmpFn)
	return out
}

// LevelFilter selects signals by level.
type LevelFilter string

const (
	LevelAll      LevelFilter = "all"
	LevelElevated LevelFilter = "elevated"
	LevelNormal   LevelFilter = "normal"
)

// ParseLevelFilter validates a level filter name. Empty means LevelAll.
func ParseLevelFilter(s string) (LevelFilter, error) {
	switch l := LevelFilter(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LevelAll, nil
	case LevelAll, LevelElevated, LevelNormal:
		return l, nil
	}
	return "", eris.Errorf("aggregate: unknown level %q (want all, elevated or normal)", s)
}

// FilterSignals returns the signals at the selected level, in input order.
func FilterSignals(signals []model.HealthSignal, level LevelFilter) []model.HealthSignal {
	out := make([]model.HealthSignal, 0, len(signals))
	for _, s := range signals {
		switch level {
		case LevelElevated:
			if s.SignalLevel != model.LevelElevated {
				continue
			}
		case LevelNormal:
			if s.SignalLevel != model.LevelNormal {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// RecentSignals returns signals dated within the last days days of now,
// in input order. Signals without a parseable date are dropped.
func RecentSignals(signals []model.HealthSignal, days int, now time.Time) []model.HealthSignal {
	y, m, d := now.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	out := make([]model.HealthSignal, 0, len(signals))
	for _, s := range signals {
		date := s.Date()
		if date.IsZero() || date.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}
