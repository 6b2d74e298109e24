package report

import (
	"strings"
	"time"
)

// Export kinds used in file names.
const (
	KindAssessments   = "assessments"
	KindHealthSignals = "health-signals"
	KindPriorities    = "priorities"
	KindSummary       = "summary"
	KindWorkbook      = "workbook"
	KindMap           = "map"
)

// Filename returns healthmap-<kind>-YYYY-MM-DD.<ext> for the UTC date of now.
func Filename(kind, ext string, now time.Time) string {
	return "healthmap-" + kind + "-" + now.UTC().Format(time.DateOnly) + "." + strings.TrimPrefix(ext, ".")
}
