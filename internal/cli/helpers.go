package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/optimizer"
	"github.com/stitts-dev/tennis-sim/internal/simulator"
	"github.com/stitts-dev/tennis-sim/pkg/config"
)

// Flags shared by the batch commands
var (
	rosterPath   string
	salaryPath   string
	detailsPath  string
	outputDir    string
	seed         uint64
	simulations  int
	numLineups   int
	showProgress bool
)

func addRosterFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&rosterPath, "roster", "r", "", "Prepared roster CSV (default: ROSTER_PATH)")
}

func addSalaryFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&salaryPath, "salaries", "s", "", "Salary pool CSV (default: SALARY_PATH)")
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: OUTPUT_DIR)")
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Top-level random seed (default: SEED)")
	cmd.Flags().IntVarP(&simulations, "simulations", "n", 0, "Trials per pairing (default: NUM_SIMULATIONS)")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Print simulation progress to stderr")
}

func addOptimizerFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&numLineups, "lineups", "l", 0, "Lineups to produce (default: NUM_LINEUPS)")
}

// applyFlags overrides config values with flags the user set
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("roster") {
		c.RosterPath = rosterPath
	}
	if flags.Changed("salaries") {
		c.SalaryPath = salaryPath
	}
	if flags.Changed("out") {
		c.OutputDir = outputDir
	}
	if flags.Changed("seed") {
		c.Seed = seed
	}
	if flags.Changed("simulations") {
		c.NumSimulations = simulations
	}
	if flags.Changed("lineups") {
		c.NumLineups = numLineups
	}
	return c.Validate()
}

// signalContext cancels on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// progressPrinter drains simulator progress updates until the channel closes
func progressPrinter(w io.Writer) (chan<- simulator.Progress, func()) {
	ch := make(chan simulator.Progress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range ch {
			fmt.Fprintf(w, "\rsimulated %d/%d trials", p.Completed, p.Total)
		}
		fmt.Fprintln(w)
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func printSummaries(w io.Writer, summaries []models.SlateSummary) {
	fmt.Fprintf(w, "%-8s %-28s %8s %8s %8s %8s %6s\n", "MATCH", "PLAYER", "MEAN", "P10", "P50", "P90", "WINS")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-8s %-28s %8.2f %8.2f %8.2f %8.2f %6d\n", s.PairingID, s.Competitor, s.Mean, s.P10, s.P50, s.P90, s.Wins)
	}
}

func printLineups(w io.Writer, final models.FinalLineupSet, summary optimizer.PoolSummary) {
	for _, l := range final.Lineups {
		fmt.Fprintf(w, "Lineup %d  projection %.2f  salary %d\n", l.ID, l.TotalProjection, l.TotalSalary)
		for _, p := range l.Players {
			fmt.Fprintf(w, "  %-28s %-8s %6d %8.2f\n", p.Name, p.PairingID, p.Salary, p.Projection)
		}
	}
	if final.Partial() {
		fmt.Fprintf(w, "only %d of %d requested lineups satisfied the diversity rule\n", len(final.Lineups), final.Requested)
	}

	fmt.Fprintf(w, "\nPool: %d lineups, avg projection %.2f (%.2f to %.2f), avg salary %.0f\n",
		summary.Pool.Count, summary.Pool.AverageProjection, summary.Pool.MinProjection, summary.Pool.MaxProjection, summary.Pool.AverageSalary)
	fmt.Fprintln(w, "\nExposure:")
	for _, e := range summary.Exposure {
		if e.FinalCount == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-28s %3d lineups %6.1f%%\n", e.Name, e.FinalCount, e.FinalPercent)
	}
}
