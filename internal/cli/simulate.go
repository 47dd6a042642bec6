package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/internal/roster"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate every pairing of a slate",
	Long: `Simulate every pairing of the prepared roster and write the slate summary
and the per-trial score table.

Examples:
  tennis-sim simulate --roster data/processed/sim_prepped.csv --out data/processed
  tennis-sim simulate -n 5000 --seed 42 --progress`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addRosterFlag(simulateCmd)
	addOutputFlag(simulateCmd)
	addSimulationFlags(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	entries, err := roster.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var opts []pipeline.Option
	if showProgress {
		ch, stop := progressPrinter(os.Stderr)
		defer stop()
		opts = append(opts, pipeline.WithProgress(ch))
	}

	slate, err := pipeline.NewRunner(cfg.PipelineSettings(), opts...).Simulate(ctx, entries)
	if err != nil {
		return err
	}
	if err := roster.SaveSlate(cfg.OutputDir, slate); err != nil {
		return err
	}

	printSummaries(cmd.OutOrStdout(), slate.Summaries)
	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %s and %s to %s\n", roster.SummaryFile, roster.DistributionFile, cfg.OutputDir)
	return nil
}
