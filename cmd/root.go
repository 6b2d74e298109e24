package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/healthmap-cli/internal/config"
)

var (
	cfg            *config.Config
	backendURLFlag string
)

var rootCmd = &cobra.Command{
	Use:   "healthmap",
	Short: "HealthMap environmental risk and health signal client",
	Long:  "Pulls site assessments and community health signals from the HealthMap backend, correlates and aggregates them, and exports reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if backendURLFlag != "" {
			c.Backend.BaseURL = backendURLFlag
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURLFlag, "backend", "", "backend base URL (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
