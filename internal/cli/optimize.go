package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/internal/roster"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Build lineups from a saved score table",
	Long: `Build the final lineup set from a score table written by "simulate".
Pairing ids are restored from the roster.

Examples:
  tennis-sim optimize --details data/processed/simulation_details.csv --salaries data/raw/pool.csv
  tennis-sim optimize -l 150 --out lineups/`,
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
	addRosterFlag(optimizeCmd)
	addSalaryFlag(optimizeCmd)
	addOutputFlag(optimizeCmd)
	addOptimizerFlags(optimizeCmd)
	optimizeCmd.Flags().StringVarP(&detailsPath, "details", "d", "", "Score table CSV (default: OUTPUT_DIR/"+roster.DistributionFile+")")
	optimizeCmd.Flags().Uint64Var(&seed, "seed", 0, "Top-level random seed (default: SEED)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	path := detailsPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, roster.DistributionFile)
	}

	entries, err := roster.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}
	dists, err := roster.LoadDistributions(path, entries)
	if err != nil {
		return err
	}
	salaries, err := roster.LoadSalaries(cfg.SalaryPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	built, err := pipeline.NewRunner(cfg.PipelineSettings()).Optimize(ctx, dists, salaries)
	if err != nil {
		return err
	}
	if err := roster.SaveLineups(cfg.OutputDir, built.Final); err != nil {
		return err
	}

	printLineups(cmd.OutOrStdout(), built.Final, built.Summary)
	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %s to %s\n", roster.LineupFile, cfg.OutputDir)
	return nil
}
