package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/geo"
	"github.com/sells-group/healthmap-cli/internal/model"
	"github.com/sells-group/healthmap-cli/internal/report"
	"github.com/sells-group/healthmap-cli/pkg/healthmap"
)

var (
	sitePhoto  string
	siteFormat string
)

type siteView struct {
	Assessment model.Assessment    `json:"assessment" yaml:"assessment"`
	Signal     *model.HealthSignal `json:"signal,omitempty" yaml:"signal,omitempty"`
	ImageURL   string              `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

var siteCmd = &cobra.Command{
	Use:   "site <id>",
	Short: "Show one assessment with its correlated health signal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid site id %q", args[0])
		}
		format, err := report.ParseFormat(siteFormat)
		if err != nil {
			return err
		}

		client, err := newClient("client")
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		a, err := client.GetAssessment(ctx, id)
		if err != nil {
			if errors.Is(err, healthmap.ErrNotFound) {
				return fmt.Errorf("site #%d not found", id)
			}
			zap.L().Debug("get assessment failed", zap.Error(err))
			return errors.New("Failed to load site details. Make sure the backend is running.") //nolint:staticcheck
		}

		view := siteView{Assessment: *a}
		if a.ImagePath != "" {
			view.ImageURL = client.FileURL(a.ImagePath)
		}

		// Signals are auxiliary here too.
		signals, err := client.ListHealthSignals(ctx)
		if err != nil {
			zap.L().Warn("health signals unavailable", zap.Error(err))
		} else if s, ok := geo.MatchSignal(*a, signals); ok {
			view.Signal = &s
		}

		if sitePhoto != "" {
			if a.ImagePath == "" {
				return fmt.Errorf("site #%d has no photo", id)
			}
			n, err := client.DownloadFile(ctx, a.ImagePath, sitePhoto)
			if err != nil {
				return err
			}
			zap.L().Info("photo saved", zap.String("path", sitePhoto), zap.Int64("bytes", n))
		}

		if format != report.FormatTable {
			return report.Encode(cmd.OutOrStdout(), format, view)
		}
		printSite(cmd.OutOrStdout(), view)
		return nil
	},
}

func printSite(w io.Writer, v siteView) {
	a := v.Assessment
	fmt.Fprintf(w, "Site #%d  %s  %s\n", a.ID, a.Priority, model.DisplayName(a.SiteType))
	fmt.Fprintf(w, "Location:      (%.4f, %.4f)\n", a.Latitude, a.Longitude)
	if a.BuildingAge != "" {
		fmt.Fprintf(w, "Building age:  %s\n", model.DisplayName(a.BuildingAge))
	}
	if a.MaterialType != "" {
		fmt.Fprintf(w, "Material:      %s\n", a.MaterialType)
	}
	fmt.Fprintf(w, "Overall risk:  %d%%\n", a.OverallRisk)
	fmt.Fprintf(w, "Asbestos risk: %d%%\n", a.AsbestosRisk)
	fmt.Fprintf(w, "Water risk:    %d%%\n", a.WaterRisk)

	fmt.Fprintln(w, "\nIndicators:")
	for _, ind := range a.Indicators() {
		mark := "no"
		if ind.Value {
			mark = "yes"
		}
		fmt.Fprintf(w, "  %-16s %s\n", ind.Label, mark)
	}

	if a.Recommendation != "" {
		fmt.Fprintf(w, "\nRecommendation:\n  %s\n", a.Recommendation)
	}
	if a.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n  %s\n", a.Notes)
	}

	fmt.Fprintln(w, "\nHealth signal:")
	if v.Signal == nil {
		fmt.Fprintln(w, "  None")
	} else {
		s := v.Signal
		fmt.Fprintf(w, "  %s %s in %s (%s)\n", model.DisplayName(s.SignalLevel), model.DisplayName(s.SignalType), areaLabel(*s), s.SignalDate)
		fmt.Fprintf(w, "  Related factors: %s\n", s.SignalType.RelatedFactors())
	}

	fmt.Fprintf(w, "\nCreated: %s", a.CreatedAt)
	if a.CreatedBy != "" {
		fmt.Fprintf(w, " by %s", a.CreatedBy)
	}
	fmt.Fprintln(w)
	if v.ImageURL != "" {
		fmt.Fprintf(w, "Photo:   %s\n", v.ImageURL)
	}
}

func areaLabel(s model.HealthSignal) string {
	if s.AreaName != "" {
		return s.AreaName
	}
	return s.AreaID
}

func init() {
	siteCmd.Flags().StringVar(&sitePhoto, "photo", "", "download the site photo to this path")
	siteCmd.Flags().StringVar(&siteFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(siteCmd)
}
