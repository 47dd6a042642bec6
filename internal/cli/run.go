package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/internal/roster"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the slate and build lineups in one pass",
	Long: `Run the full pipeline: simulate every pairing, sample projection sets,
solve one lineup per set and keep a diverse final set.

Examples:
  tennis-sim run --roster data/processed/sim_prepped.csv --salaries data/raw/pool.csv
  tennis-sim run -n 2000 -l 20 --seed 7 --out results/`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRosterFlag(runCmd)
	addSalaryFlag(runCmd)
	addOutputFlag(runCmd)
	addSimulationFlags(runCmd)
	addOptimizerFlags(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	entries, err := roster.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}
	salaries, err := roster.LoadSalaries(cfg.SalaryPath)
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

	res, err := pipeline.NewRunner(cfg.PipelineSettings(), opts...).Run(ctx, entries, salaries)
	if err != nil {
		return err
	}
	if err := roster.SaveSlate(cfg.OutputDir, res.Slate); err != nil {
		return err
	}
	if err := roster.SaveLineups(cfg.OutputDir, res.Final); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummaries(out, res.Slate.Summaries)
	fmt.Fprintln(out)
	printLineups(out, res.Final, res.Summary)
	fmt.Fprintf(out, "\nrun %s finished in %s, results in %s\n", res.RunID, res.Timings.Total, cfg.OutputDir)
	return nil
}
