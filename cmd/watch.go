package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/dashboard"
	"github.com/sells-group/healthmap-cli/internal/fetcher"
	"github.com/sells-group/healthmap-cli/internal/monitoring"
)

var watchOnce bool

func printCheck(w io.Writer, res *monitoring.CheckResult) {
	s := res.Snapshot
	fmt.Fprintf(w, "[%s] sites=%d critical=%d signals=%d elevated=%d risk_areas=%d alerts=%d sent=%d\n",
		s.CollectedAt.Format("2006-01-02 15:04:05"),
		s.Assessments.Total, s.Assessments.Critical,
		s.Signals.Total, s.Signals.Elevated,
		len(s.RiskAreas), len(res.Alerts), res.Sent,
	)
	for _, a := range res.Alerts {
		fmt.Fprintf(w, "  [%s] %s\n", a.Severity, a.Message)
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend and raise data-quality and risk alerts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient("watch")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		collector := monitoring.NewCollector(dashboard.NewLoader(client, nil))
		alerter := monitoring.NewAlerter(cfg.Monitoring, fetcher.NewHTTPFetcher(httpOptions()))
		checker := monitoring.NewChecker(collector, alerter, cfg.Monitoring)

		w := cmd.OutOrStdout()
		if watchOnce {
			res, err := checker.Check(ctx)
			if err != nil {
				zap.L().Debug("check failed", zap.Error(err))
				return errors.New(dashboard.LoadFailedMessage)
			}
			printCheck(w, res)
			return nil
		}

		checker.OnCheck = func(res *monitoring.CheckResult) {
			printCheck(w, res)
		}
		checker.Run(ctx)
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single check and exit")
	rootCmd.AddCommand(watchCmd)
}
