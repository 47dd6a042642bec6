package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/pkg/config"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tennis-sim",
	Short: "Monte Carlo tennis slate simulator and DFS lineup optimizer",
	Long: `tennis-sim simulates every match of a tennis slate point by point,
scores each trial with DraftKings tennis rules, and builds diverse
salary-capped lineups from the simulated score distributions.

Settings come from .env and the environment; flags override them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// cfg is loaded before any command runs
var cfg *config.Config

var logLevel string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	logger.InitLogger(loaded.LogLevel, loaded.IsDevelopment())
	cfg = loaded
	return nil
}
