// Package geo associates health signals with assessment sites and renders
// both as GeoJSON map layers.
package geo

import (
	"math"
	"strconv"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// ProximityDegrees is the per-axis match window in degrees. Both latitude
// and longitude must differ by strictly less than this. It compares raw
// degree deltas, not great-circle distance.
const ProximityDegrees = 0.01

// MatchKind says how a signal was associated with a site.
type MatchKind string

const (
	MatchNone      MatchKind = ""
	MatchAreaID    MatchKind = "area_id"
	MatchProximity MatchKind = "proximity"
)

// Correlation pairs an assessment with its matched signal, if any.
type Correlation struct {
	Assessment model.Assessment    `json:"assessment" yaml:"assessment"`
	Signal     *model.HealthSignal `json:"signal,omitempty" yaml:"signal,omitempty"`
	Kind       MatchKind           `json:"matchKind,omitempty" yaml:"match_kind,omitempty"`
}

// Matched reports whether a signal was found.
func (c Correlation) Matched() bool {
	return c.Signal != nil
}

// MatchSignal finds the signal for an assessment. A signal whose area id
// equals the assessment id wins outright; otherwise the first located
// signal inside the proximity window matches. Input order breaks ties.
func MatchSignal(a model.Assessment, signals []model.HealthSignal) (model.HealthSignal, bool) {
	i, _ := match(a, signals)
	if i < 0 {
		return model.HealthSignal{}, false
	}
	return signals[i], true
}

// Correlate matches every assessment, preserving assessment order.
func Correlate(assessments []model.Assessment, signals []model.HealthSignal) []Correlation {
	out := make([]Correlation, 0, len(assessments))
	for _, a := range assessments {
		c := Correlation{Assessment: a}
		if i, kind := match(a, signals); i >= 0 {
			s := signals[i]
			c.Signal = &s
			c.Kind = kind
		}
		out = append(out, c)
	}
	return out
}

func match(a model.Assessment, signals []model.HealthSignal) (int, MatchKind) {
	id := strconv.FormatInt(a.ID, 10)
	for i, s := range signals {
		if s.AreaID == id {
			return i, MatchAreaID
		}
	}
	for i, s := range signals {
		if Near(a, s) {
			return i, MatchProximity
		}
	}
	return -1, MatchNone
}

// Near reports whether s carries coordinates inside the proximity window
// around a. A coordinate of exactly zero counts as present.
func Near(a model.Assessment, s model.HealthSignal) bool {
	if !s.Located() {
		return false
	}
	return math.Abs(*s.Latitude-a.Latitude) < ProximityDegrees &&
		math.Abs(*s.Longitude-a.Longitude) < ProximityDegrees
}
