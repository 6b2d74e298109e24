// Package monitoring checks loaded data for quality problems and risk
// conditions, and delivers alerts to a webhook.
package monitoring

import (
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// Mismatch is an assessment whose backend priority disagrees with the
// band its overall risk falls in.
type Mismatch struct {
	AssessmentID int64          `json:"assessment_id"`
	OverallRisk  int            `json:"overall_risk"`
	Priority     model.Priority `json:"priority"`
	Expected     model.Priority `json:"expected"`
}

// CheckPriorities returns every assessment whose priority does not match
// its risk band, in input order. Each one is logged; none is corrected.
func CheckPriorities(assessments []model.Assessment) []Mismatch {
	var out []Mismatch
	for _, a := range assessments {
		want := model.PriorityForRisk(a.OverallRisk)
		if a.Priority == want {
			continue
		}
		zap.L().Warn("monitoring: priority does not match risk band",
			zap.Int64("assessment_id", a.ID),
			zap.Int("overall_risk", a.OverallRisk),
			zap.String("priority", string(a.Priority)),
			zap.String("expected", string(want)),
		)
		out = append(out, Mismatch{
			AssessmentID: a.ID,
			OverallRisk:  a.OverallRisk,
			Priority:     a.Priority,
			Expected:     want,
		})
	}
	return out
}
