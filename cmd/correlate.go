package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/report"
)

var (
	correlateFormat  string
	correlateMatched bool
)

// correlations pairs each loaded assessment with its signal. When
// matchedOnly is set, sites without a signal are dropped.
func correlations(snap *dashboard.Snapshot, matchedOnly bool) []geo.Correlation {
	all := geo.Correlate(snap.Assessments, snap.HealthSignals)
	if !matchedOnly {
		return all
	}
	out := make([]geo.Correlation, 0, len(all))
	for _, c := range all {
		if c.Matched() {
			out = append(out, c)
		}
	}
	return out
}

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Match health signals to assessed sites by area id or proximity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := report.ParseFormat(correlateFormat)
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), dashboard.AnalyticsSources())
		if err != nil {
			return err
		}

		out := correlations(snap, correlateMatched)
		if format != report.FormatTable {
			return report.Encode(cmd.OutOrStdout(), format, out)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, report.CorrelationTable(out))
		matched := 0
		for _, c := range out {
			if c.Matched() {
				matched++
			}
		}
		fmt.Fprintf(w, "%d of %d sites have a correlated health signal\n", matched, len(snap.Assessments))
		if snap.HasFailed(dashboard.SourceHealthSignals) {
			fmt.Fprintln(w, "Health signals were unavailable; no sites could be matched.")
		}
		return nil
	},
}

func init() {
	correlateCmd.Flags().StringVar(&correlateFormat, "format", "table", "output format: table, json or yaml")
	correlateCmd.Flags().BoolVar(&correlateMatched, "matched", false, "only list sites with a correlated signal")
	rootCmd.AddCommand(correlateCmd)
}
