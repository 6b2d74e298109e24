// Package report renders snapshots as CSV, plain text, XLSX, JSON, YAML
// and terminal tables.
package report

import (
	"strconv"
	"strings"

	"github.com/sells-group/healthmap-cli/internal/model"
)

// AssessmentHeader is the fixed column order of assessment exports.
var AssessmentHeader = []string{
	"ID",
	"Latitude",
	"Longitude",
	"Site Type",
	"Building Age",
	"Asbestos Risk",
	"Water Risk",
	"Overall Risk",
	"Priority",
	"Notes",
	"Created At",
}

// SignalHeader is the fixed column order of health signal exports.
var SignalHeader = []string{
	"ID",
	"Area Name",
	"Signal Type",
	"Signal Level",
	"Latitude",
	"Longitude",
	"Notes",
	"Signal Date",
	"Created At",
}

// AssessmentsCSV renders assessments one row each, in input order. Rows
// are joined by newlines with no trailing newline.
func AssessmentsCSV(assessments []model.Assessment) string {
	lines := make([]string, 0, len(assessments)+1)
	lines = append(lines, strings.Join(AssessmentHeader, ","))
	for _, a := range assessments {
		lines = append(lines, strings.Join(AssessmentRow(a), ","))
	}
	return strings.Join(lines, "\n")
}

// SignalsCSV renders health signals one row each, in input order.
func SignalsCSV(signals []model.HealthSignal) string {
	lines := make([]string, 0, len(signals)+1)
	lines = append(lines, strings.Join(SignalHeader, ","))
	for _, s := range signals {
		lines = append(lines, strings.Join(SignalRow(s), ","))
	}
	return strings.Join(lines, "\n")
}

// AssessmentRow returns the CSV fields of a. Notes are always quoted;
// every other field is the backend value, quoted only when it holds a
// separator, quote or line break.
func AssessmentRow(a model.Assessment) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		formatFloat(a.Latitude),
		formatFloat(a.Longitude),
		quoteField(string(a.SiteType)),
		quoteField(string(a.BuildingAge)),
		strconv.Itoa(a.AsbestosRisk),
		strconv.Itoa(a.WaterRisk),
		strconv.Itoa(a.OverallRisk),
		quoteField(string(a.Priority)),
		QuoteNotes(a.Notes),
		quoteField(a.CreatedAt),
	}
}

// SignalRow returns the CSV fields of s. A missing area name renders as
// N/A; missing coordinates and date render empty.
func SignalRow(s model.HealthSignal) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		quoteField(areaName(s)),
		quoteField(string(s.SignalType)),
		quoteField(string(s.SignalLevel)),
		formatOptional(s.Latitude),
		formatOptional(s.Longitude),
		QuoteNotes(s.Notes),
		quoteField(s.SignalDate),
		quoteField(s.CreatedAt),
	}
}

func areaName(s model.HealthSignal) string {
	if s.AreaName == "" {
		return "N/A"
	}
	return s.AreaName
}

// QuoteNotes wraps free text in double quotes, doubling inner quotes.
func QuoteNotes(notes string) string {
	return `"` + strings.ReplaceAll(notes, `"`, `""`) + `"`
}

// quoteField leaves v as is unless it would break the row.
func quoteField(v string) string {
	if strings.ContainsAny(v, ",\"\r\n") {
		return QuoteNotes(v)
	}
	return v
}

// formatFloat uses the shortest representation that round-trips, which
// matches how the backend's JSON numbers read.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
