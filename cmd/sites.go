package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/internal/report"
)

var (
	sitesPriorities []string
	sitesType       string
	sitesSort       string
	sitesFormat     string
)

// parseAssessmentFilter turns flag values into a filter. Values are
// case-insensitive; "all" or empty matches everything.
func parseAssessmentFilter(priorities []string, siteType string) (aggregate.AssessmentFilter, error) {
	var f aggregate.AssessmentFilter
	for _, p := range priorities {
		if strings.EqualFold(p, "all") {
			continue
		}
		prio := model.Priority(strings.ToUpper(strings.TrimSpace(p)))
		if !prio.Valid() {
			return f, fmt.Errorf("unknown priority %q", p)
		}
		f.Priorities = append(f.Priorities, prio)
	}
	if siteType != "" && !strings.EqualFold(siteType, "all") {
		st := model.SiteType(strings.ToUpper(strings.TrimSpace(siteType)))
		switch st {
		case model.SiteTypeDebris, model.SiteTypeWater, model.SiteTypeBoth:
		default:
			return f, fmt.Errorf("unknown site type %q", siteType)
		}
		f.SiteTypes = []model.SiteType{st}
	}
	return f, nil
}

// prioritizedSites filters and sorts a snapshot's assessments.
func prioritizedSites(snap *dashboard.Snapshot, f aggregate.AssessmentFilter, key aggregate.SortKey) []model.Assessment {
	return aggregate.SortAssessments(aggregate.FilterAssessments(snap.Assessments, f), key)
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List assessed sites by priority with their correlated health signals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := parseAssessmentFilter(sitesPriorities, sitesType)
		if err != nil {
			return err
		}
		key, err := aggregate.ParseSortKey(sitesSort)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(sitesFormat)
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), dashboard.PrioritySources())
		if err != nil {
			return err
		}

		sites := prioritizedSites(snap, filter, key)
		correlations := geo.Correlate(sites, snap.HealthSignals)
		if format != report.FormatTable {
			return report.Encode(cmd.OutOrStdout(), format, correlations)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, report.PriorityTable(aggregate.AssessmentStats(snap.Assessments)))
		fmt.Fprintln(w, report.CorrelationTable(correlations))
		fmt.Fprintf(w, "Showing %d of %d sites\n", len(sites), len(snap.Assessments))
		return nil
	},
}

func init() {
	sitesCmd.Flags().StringSliceVar(&sitesPriorities, "priority", nil, "priority bands to include (CRITICAL, HIGH, MEDIUM, LOW)")
	sitesCmd.Flags().StringVar(&sitesType, "type", "", "site type to include (DEBRIS, WATER, BOTH)")
	sitesCmd.Flags().StringVar(&sitesSort, "sort", "risk", "sort by risk, date, asbestos or water")
	sitesCmd.Flags().StringVar(&sitesFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(sitesCmd)
}
