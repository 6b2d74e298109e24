package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/aggregate"
	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/fetcher"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/internal/report"
	"github.com/sells-group/healthmap-cli/pkg/healthmap"
)

var (
	signalsDays   int
	signalsLevel  string
	signalsFormat string

	createReq          model.HealthSignalRequest
	createType         string
	createLevel        string
	createSource       string
	createLat          float64
	createLon          float64
	importSignalsCSV   string
	importSignalsXLSX  string
	importSignalsSheet string
)

// signalsView is the structured form of the signals command output.
type signalsView struct {
	Days      int                      `json:"days" yaml:"days"`
	Totals    aggregate.SignalTotals   `json:"totals" yaml:"totals"`
	Signals   []model.HealthSignal     `json:"signals" yaml:"signals"`
	Areas     []model.AreaSummary      `json:"areas" yaml:"areas"`
	Stats     *model.HealthSignalStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	RiskAreas []string                 `json:"riskAreas" yaml:"risk_areas"`
	// BackendRiskAreas is the backend's count over all time, or -1 when
	// its stats were unavailable.
	BackendRiskAreas int `json:"backendRiskAreas" yaml:"backend_risk_areas"`
}

func newSignalsView(snap *dashboard.Snapshot, level aggregate.LevelFilter) signalsView {
	areas := aggregate.AreaSummaries(snap.HealthSignals)
	v := signalsView{
		Days:    snap.SignalDays,
		Totals:  aggregate.SignalCounts(snap.HealthSignals),
		Signals: aggregate.FilterSignals(snap.HealthSignals, level),
		Areas:   areas,
		Stats:   snap.SignalStats,

		RiskAreas:        []string{},
		BackendRiskAreas: -1,
	}
	for _, a := range aggregate.RiskAreas(areas) {
		v.RiskAreas = append(v.RiskAreas, a.AreaID)
	}
	if snap.SignalStats != nil {
		v.BackendRiskAreas = snap.SignalStats.AreasWithRisk()
	}
	return v
}

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "List recent community health signals by area",
	RunE: func(cmd *cobra.Command, _ []string) error {
		level, err := aggregate.ParseLevelFilter(signalsLevel)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(signalsFormat)
		if err != nil {
			return err
		}
		days := signalsDays
		if !cmd.Flags().Changed("days") {
			days = cfg.Signals.DefaultDays
		}

		snap, err := loadSnapshot(cmd.Context(), dashboard.SignalsSources(days))
		if err != nil {
			return err
		}
		if snap.HasFailed(dashboard.SourceHealthSignals) {
			return errors.New("health signals are unavailable")
		}

		view := newSignalsView(snap, level)
		if format != report.FormatTable {
			return report.Encode(cmd.OutOrStdout(), format, view)
		}
		printSignals(cmd.OutOrStdout(), view)
		return nil
	},
}

func printSignals(w io.Writer, v signalsView) {
	fmt.Fprintf(w, "Health signals, last %d days: %d (%d elevated, %d normal)\n", v.Days, v.Totals.Total, v.Totals.Elevated, v.Totals.Normal)
	if len(v.Signals) > 0 {
		fmt.Fprintln(w, report.SignalTable(v.Signals))
	}
	if len(v.Areas) > 0 {
		fmt.Fprintln(w, "\nBy area:")
		fmt.Fprintln(w, report.AreaTable(v.Areas))
	}
	fmt.Fprint(w, "\nAreas with elevated signals: ")
	if len(v.RiskAreas) == 0 {
		fmt.Fprintln(w, "None")
	} else {
		fmt.Fprintln(w, strings.Join(v.RiskAreas, ", "))
	}
	if v.BackendRiskAreas >= 0 {
		fmt.Fprintf(w, "Areas with risk (all time): %d\n", v.BackendRiskAreas)
	}
}

var signalsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Report a new community health signal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := createReq
		req.SignalType = model.SignalType(strings.ToUpper(createType))
		req.SignalLevel = model.SignalLevel(strings.ToUpper(createLevel))
		req.Source = model.SignalSource(strings.ToUpper(createSource))
		if cmd.Flags().Changed("lat") {
			lat := createLat
			req.Latitude = &lat
		}
		if cmd.Flags().Changed("lon") {
			lon := createLon
			req.Longitude = &lon
		}
		if err := req.Prepare(time.Now()); err != nil {
			return err
		}

		client, err := newClient("client")
		if err != nil {
			return err
		}
		created, err := submitSignal(cmd, client, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Health signal #%d recorded for %s\n", created.ID, req.AreaName)
		return nil
	},
}

// submitSignal sends one signal. Any failure surfaces as the generic
// retry message; the cause is already logged by the client.
func submitSignal(cmd *cobra.Command, client healthmap.Client, req model.HealthSignalRequest) (*model.HealthSignal, error) {
	created, err := client.CreateHealthSignal(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, healthmap.ErrSubmitFailed) {
			return nil, healthmap.ErrSubmitFailed
		}
		return nil, err
	}
	return created, nil
}

// readSignalRequests decodes signal rows from CSV with a header row.
func readSignalRequests(r io.Reader) ([]model.HealthSignalRequest, error) {
	return decodeSignalRequests(csv.NewReader(r))
}

// readSignalRequestsXLSX decodes signal rows from one sheet of a workbook.
// The first row is the header, using the same column names as CSV.
func readSignalRequestsXLSX(path, sheet string) ([]model.HealthSignalRequest, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, err
	}
	return decodeSignalRequests(fetcher.NewRowReader(rows))
}

func decodeSignalRequests(r csvutil.Reader) ([]model.HealthSignalRequest, error) {
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "read csv header")
	}

	var out []model.HealthSignalRequest
	for {
		var req model.HealthSignalRequest
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, eris.Wrapf(err, "csv row %d", len(out)+1)
		}
		out = append(out, req)
	}
}

func readSignalCSVFile(path string) ([]model.HealthSignalRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open csv %s", path)
	}
	defer f.Close() //nolint:errcheck
	return readSignalRequests(f)
}

var signalsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Submit health signals from a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		source := importSignalsCSV
		var (
			reqs []model.HealthSignalRequest
			err  error
		)
		if importSignalsXLSX != "" {
			source = importSignalsXLSX
			reqs, err = readSignalRequestsXLSX(importSignalsXLSX, importSignalsSheet)
		} else {
			reqs, err = readSignalCSVFile(importSignalsCSV)
		}
		if err != nil {
			return err
		}

		client, err := newClient("client")
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		now := time.Now()
		var failed int
		for i, req := range reqs {
			row := i + 1
			if err := req.Prepare(now); err != nil {
				failed++
				fmt.Fprintf(w, "row %d: %v\n", row, err)
				continue
			}
			created, err := submitSignal(cmd, client, req)
			if err != nil {
				failed++
				fmt.Fprintf(w, "row %d: %v\n", row, err)
				continue
			}
			fmt.Fprintf(w, "row %d: recorded #%d for %s\n", row, created.ID, req.AreaName)
		}

		zap.L().Info("signal import complete",
			zap.String("file", source),
			zap.Int("rows", len(reqs)),
			zap.Int("failed", failed),
		)
		if failed > 0 {
			return fmt.Errorf("%d of %d rows failed", failed, len(reqs))
		}
		return nil
	},
}

func init() {
	signalsCmd.Flags().IntVar(&signalsDays, "days", 7, "number of days to include (default from config)")
	signalsCmd.Flags().StringVar(&signalsLevel, "level", "all", "signal level: all, elevated or normal")
	signalsCmd.Flags().StringVar(&signalsFormat, "format", "table", "output format: table, json or yaml")

	f := signalsCreateCmd.Flags()
	f.StringVar(&createReq.AreaName, "area-name", "", "area display name (required)")
	f.StringVar(&createReq.AreaID, "area-id", "", "area id (default derived from the area name)")
	f.StringVar(&createType, "type", string(model.SignalRespiratory), "signal type: RESPIRATORY, GASTROINTESTINAL or SKIN")
	f.StringVar(&createLevel, "level", string(model.LevelNormal), "signal level: NORMAL or ELEVATED")
	f.StringVar(&createSource, "source", string(model.SourceClinic), "source: CLINIC, FIELD_TEAM, MOBILE_UNIT or ORGANIZATION")
	f.StringVar(&createReq.SignalDate, "date", "", "signal date YYYY-MM-DD (default today)")
	f.StringVar(&createReq.Notes, "notes", "", "free-text notes")
	f.Float64Var(&createLat, "lat", 0, "latitude (required)")
	f.Float64Var(&createLon, "lon", 0, "longitude (required)")
	f.StringVar(&createReq.ReportedBy, "reported-by", "", "reporter name")
	_ = signalsCreateCmd.MarkFlagRequired("area-name")

	signalsImportCmd.Flags().StringVar(&importSignalsCSV, "csv", "", "path to CSV file")
	signalsImportCmd.Flags().StringVar(&importSignalsXLSX, "xlsx", "", "path to XLSX file")
	signalsImportCmd.Flags().StringVar(&importSignalsSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	signalsImportCmd.MarkFlagsOneRequired("csv", "xlsx")
	signalsImportCmd.MarkFlagsMutuallyExclusive("csv", "xlsx")

	signalsCmd.AddCommand(signalsCreateCmd, signalsImportCmd)
	rootCmd.AddCommand(signalsCmd)
}
