package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/model"
)

const (
	ruleMajor = "======================================"
	timeStamp = "2006-01-02 15:04:05"
)

// SummaryInput is the data a summary report is rendered from.
type SummaryInput struct {
	Assessments []model.Assessment
	Signals     []model.HealthSignal
	// Stats supplies the backend's average risk scores. When nil the
	// averages are computed from Assessments.
	Stats     *model.Stats
	Generated time.Time
}

// Summary renders the plain-text summary report. Sections always appear
// in the same order; CRITICAL sites are listed in input order, or as
// "None" when there are none.
func Summary(in SummaryInput) string {
	local := aggregate.AssessmentStats(in.Assessments)
	signals := aggregate.SignalCounts(in.Signals)

	avgAsbestos, avgWater, avgOverall := local.AverageAsbestosRisk, local.AverageWaterRisk, local.AverageOverallRisk
	if in.Stats != nil {
		avgAsbestos, avgWater, avgOverall = in.Stats.AverageAsbestosRisk, in.Stats.AverageWaterRisk, in.Stats.AverageOverallRisk
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("HEALTHMAP SUMMARY REPORT")
	line("Generated: %s", in.Generated.Format(timeStamp))
	line(ruleMajor)
	line("")
	line("SITE ASSESSMENTS")
	line("----------------")
	line("Total Sites Assessed: %d", local.Total)
	line("Critical Priority: %d", local.Critical)
	line("High Priority: %d", local.High)
	line("Medium Priority: %d", local.Medium)
	line("Low Priority: %d", local.Low)
	line("")
	line("Average Risk Scores:")
	line("- Asbestos Risk: %.1f%%", avgAsbestos)
	line("- Water Risk: %.1f%%", avgWater)
	line("- Overall Risk: %.1f%%", avgOverall)
	line("")
	line("HEALTH SIGNALS")
	line("--------------")
	line("Total Health Signals: %d", signals.Total)
	line("Elevated Signals: %d", signals.Elevated)
	line("Normal Signals: %d", signals.Normal)
	line("")
	line("Breakdown by Type:")
	for _, t := range model.SignalTypes {
		line("- %s: %d", model.DisplayName(t), signals.ByType[t])
	}
	line("")
	line("CRITICAL SITES REQUIRING IMMEDIATE ATTENTION")
	line("---------------------------------------------")
	critical := 0
	for _, a := range in.Assessments {
		if a.Priority != model.PriorityCritical {
			continue
		}
		critical++
		line("Site #%d - %s - Risk: %d%% - Location: (%.4f, %.4f)",
			a.ID, a.SiteType, a.OverallRisk, a.Latitude, a.Longitude)
	}
	if critical == 0 {
		line("None")
	}
	line("")
	line(ruleMajor)
	line("End of Report")

	return b.String()
}
