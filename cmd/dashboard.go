package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/config"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/internal/monitoring"
	"github.com/sells-group/healthmap-cli/internal/report"
)

var dashboardFormat string

// dashboardView is the structured form of the dashboard command output.
type dashboardView struct {
	Assessments aggregate.Stats          `json:"assessments" yaml:"assessments"`
	Signals     aggregate.SignalTotals   `json:"signals" yaml:"signals"`
	Areas       []model.AreaSummary      `json:"areas" yaml:"areas"`
	Recent      []model.Assessment       `json:"recent,omitempty" yaml:"recent,omitempty"`
	Backend     *model.Stats             `json:"backendStats,omitempty" yaml:"backend_stats,omitempty"`
	SignalStats *model.HealthSignalStats `json:"signalStats,omitempty" yaml:"signal_stats,omitempty"`
	Alerts      []monitoring.Alert       `json:"alerts" yaml:"alerts"`
	Unavailable []dashboard.Source       `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

func newDashboardView(snap *dashboard.Snapshot, mcfg config.MonitoringConfig) dashboardView {
	q := monitoring.Summarize(snap)
	return dashboardView{
		Assessments: q.Assessments,
		Signals:     q.Signals,
		Areas:       aggregate.AreaSummaries(snap.HealthSignals),
		Recent:      snap.RecentAssessments,
		Backend:     snap.Stats,
		SignalStats: snap.SignalStats,
		Alerts:      monitoring.NewAlerter(mcfg, nil).Evaluate(q),
		Unavailable: snap.Failed,
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show site priorities, health signal totals and active alerts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := report.ParseFormat(dashboardFormat)
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), dashboard.DashboardSources())
		if err != nil {
			return err
		}

		view := newDashboardView(snap, cfg.Monitoring)
		if format != report.FormatTable {
			return report.Encode(cmd.OutOrStdout(), format, view)
		}
		printDashboard(cmd.OutOrStdout(), view)
		return nil
	},
}

func printDashboard(w io.Writer, v dashboardView) {
	fmt.Fprintf(w, "Sites assessed: %d   Average overall risk: %.1f%%\n", v.Assessments.Total, v.Assessments.AverageOverallRisk)
	fmt.Fprintln(w, report.PriorityTable(v.Assessments))

	fmt.Fprintf(w, "\nHealth signals: %d (%d elevated, %d normal)\n", v.Signals.Total, v.Signals.Elevated, v.Signals.Normal)
	if len(v.Areas) > 0 {
		fmt.Fprintln(w, report.AreaTable(v.Areas))
	}

	if len(v.Recent) > 0 {
		fmt.Fprintln(w, "\nRecent assessments:")
		for _, a := range v.Recent {
			fmt.Fprintf(w, "  #%d %s %s risk %d%% (%s)\n", a.ID, model.DisplayName(a.SiteType), a.Priority, a.OverallRisk, a.CreatedAt)
		}
	}

	fmt.Fprintln(w, "\nAlerts:")
	if len(v.Alerts) == 0 {
		fmt.Fprintln(w, "  None")
	}
	for _, a := range v.Alerts {
		fmt.Fprintf(w, "  [%s] %s\n", a.Severity, a.Message)
	}
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(dashboardCmd)
}
