package report

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func render(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// CorrelationTable lists each site with its priority, scores and the
// health signal correlated with it.
func CorrelationTable(correlations []geo.Correlation) string {
	rows := make([][]string, 0, len(correlations))
	for _, c := range correlations {
		a := c.Assessment
		health, area := "-", "-"
		if c.Signal != nil {
			health = model.DisplayName(c.Signal.SignalLevel) + " " + model.DisplayName(c.Signal.SignalType)
			area = c.Signal.AreaID
			if c.Signal.AreaName != "" {
				area = c.Signal.AreaName
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			model.DisplayName(a.SiteType),
			string(a.Priority),
			strconv.Itoa(a.OverallRisk),
			strconv.Itoa(a.AsbestosRisk),
			strconv.Itoa(a.WaterRisk),
			health,
			area,
			string(c.Kind),
		})
	}
	return render([]string{"ID", "Type", "Priority", "Overall", "Asbestos", "Water", "Health Signal", "Area", "Match"}, rows)
}

// AreaTable lists per-area signal counts as elevated/normal pairs.
func AreaTable(areas []model.AreaSummary) string {
	rows := make([][]string, 0, len(areas))
	for _, a := range areas {
		risk := "no"
		if a.HasRisk {
			risk = "YES"
		}
		name := a.AreaName
		if name == "" {
			name = a.AreaID
		}
		row := []string{name}
		for _, t := range model.SignalTypes {
			c := a.Counts(t)
			row = append(row, strconv.Itoa(c.Elevated)+"/"+strconv.Itoa(c.Normal))
		}
		row = append(row, strconv.Itoa(a.TotalSignals), risk)
		rows = append(rows, row)
	}
	return render([]string{"Area", "Respiratory", "Gastrointestinal", "Skin", "Total", "Risk"}, rows)
}

// SignalTable lists health signals in input order.
func SignalTable(signals []model.HealthSignal) string {
	rows := make([][]string, 0, len(signals))
	for _, s := range signals {
		name := s.AreaName
		if name == "" {
			name = s.AreaID
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			name,
			model.DisplayName(s.SignalType),
			model.DisplayName(s.SignalLevel),
			model.DisplayName(s.Source),
			s.SignalDate,
		})
	}
	return render([]string{"ID", "Area", "Type", "Level", "Source", "Date"}, rows)
}

// PriorityTable shows band counts with the percentage of all sites.
func PriorityTable(stats aggregate.Stats) string {
	rows := make([][]string, 0, len(model.Priorities)+1)
	for _, p := range model.Priorities {
		n := stats.Count(p)
		rows = append(rows, []string{string(p), strconv.Itoa(n), percent(n, stats.Total)})
	}
	if stats.Unbanded > 0 {
		rows = append(rows, []string{"UNBANDED", strconv.Itoa(stats.Unbanded), percent(stats.Unbanded, stats.Total)})
	}
	return render([]string{"Priority", "Sites", "Share"}, rows)
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(n)*100/float64(total), 'f', 1, 64) + "%"
}
