package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/report"
)

// Export kinds accepted by the export command and the /export route.
const (
	exportAssessments = "assessments"
	exportSignals     = "signals"
	exportPriorities  = "priorities"
	exportSummary     = "summary"
	exportXLSX        = "xlsx"
	exportGeoJSON     = "geojson"
)

var exportKinds = []string{exportAssessments, exportSignals, exportPriorities, exportSummary, exportXLSX, exportGeoJSON}

var (
	exportOut           string
	exportPriorityFlags []string
	exportSort          string
)

// exportOptions narrows the priorities export.
type exportOptions struct {
	Filter aggregate.AssessmentFilter
	Sort   aggregate.SortKey
}

// exportFile is one rendered report.
type exportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// renderExport renders one report kind from a snapshot.
func renderExport(snap *dashboard.Snapshot, kind string, opts exportOptions, now time.Time) (*exportFile, error) {
	switch kind {
	case exportAssessments:
		return &exportFile{
			Name:        report.Filename(report.KindAssessments, "csv", now),
			ContentType: "text/csv",
			Data:        []byte(report.AssessmentsCSV(snap.Assessments)),
		}, nil
	case exportSignals:
		return &exportFile{
			Name:        report.Filename(report.KindHealthSignals, "csv", now),
			ContentType: "text/csv",
			Data:        []byte(report.SignalsCSV(snap.HealthSignals)),
		}, nil
	case exportPriorities:
		sites := prioritizedSites(snap, opts.Filter, opts.Sort)
		return &exportFile{
			Name:        report.Filename(report.KindPriorities, "csv", now),
			ContentType: "text/csv",
			Data:        []byte(report.AssessmentsCSV(sites)),
		}, nil
	case exportSummary:
		text := report.Summary(report.SummaryInput{
			Assessments: snap.Assessments,
			Signals:     snap.HealthSignals,
			Stats:       snap.Stats,
			Generated:   now,
		})
		return &exportFile{
			Name:        report.Filename(report.KindSummary, "txt", now),
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(text),
		}, nil
	case exportXLSX:
		var buf bytes.Buffer
		err := report.WriteWorkbook(&buf, report.WorkbookInput{
			Assessments: snap.Assessments,
			Signals:     snap.HealthSignals,
			Areas:       aggregate.AreaSummaries(snap.HealthSignals),
		})
		if err != nil {
			return nil, err
		}
		return &exportFile{
			Name:        report.Filename(report.KindWorkbook, "xlsx", now),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        buf.Bytes(),
		}, nil
	case exportGeoJSON:
		data, err := geo.Marshal(geo.MapLayers(snap.Assessments, snap.HealthSignals))
		if err != nil {
			return nil, err
		}
		return &exportFile{
			Name:        report.Filename(report.KindMap, "geojson", now),
			ContentType: "application/geo+json",
			Data:        data,
		}, nil
	}
	return nil, fmt.Errorf("unknown export kind %q (want one of %v)", kind, exportKinds)
}

var exportCmd = &cobra.Command{
	Use:       "export <kind>",
	Short:     "Export assessments, signals, priorities, summary, xlsx or geojson to a file",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: exportKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := args[0]
		filter, err := parseAssessmentFilter(exportPriorityFlags, "")
		if err != nil {
			return err
		}
		key, err := aggregate.ParseSortKey(exportSort)
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(cmd.Context(), dashboard.ReportSources())
		if err != nil {
			return err
		}
		if kind == exportSignals && snap.HasFailed(dashboard.SourceHealthSignals) {
			return eris.New("health signals are unavailable")
		}

		file, err := renderExport(snap, kind, exportOptions{Filter: filter, Sort: key}, time.Now())
		if err != nil {
			return err
		}

		dir := exportOut
		if dir == "" {
			dir = cfg.Export.Dir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create export dir %s", dir)
		}
		path := filepath.Join(dir, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", path)
		}

		zap.L().Info("export written",
			zap.String("kind", kind),
			zap.String("path", path),
			zap.Int("bytes", len(file.Data)),
			zap.Strings("unavailable", sourceNames(snap.Failed)),
		)
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func sourceNames(srcs []dashboard.Source) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = string(s)
	}
	return out
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output directory (default from config)")
	exportCmd.Flags().StringSliceVar(&exportPriorityFlags, "priority", nil, "priorities export: bands to include")
	exportCmd.Flags().StringVar(&exportSort, "sort", "risk", "priorities export: sort by risk, date, asbestos or water")
	rootCmd.AddCommand(exportCmd)
}
