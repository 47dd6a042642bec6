package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

// Output file names inside the output directory
const (
	SummaryFile      = "sim_results.csv"
	DistributionFile = "simulation_details.csv"
	LineupFile       = "optimized_lineups.csv"
)

var summaryHeaders = []string{"MatchID", "Player", "Mean", "P10", "P25", "P50", "P75", "P90", "Wins", "Losses"}

var lineupHeaders = []string{"LineupID", "LineupKey", "Player", "MatchID", "Salary", "Projection", "TotalProjection", "TotalSalary"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSummaries writes one row per competitor of the slate summary
func WriteSummaries(w io.Writer, summaries []models.SlateSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, s := range summaries {
		row := []string{
			s.PairingID,
			s.Competitor,
			formatFloat(s.Mean),
			formatFloat(s.P10),
			formatFloat(s.P25),
			formatFloat(s.P50),
			formatFloat(s.P75),
			formatFloat(s.P90),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write summary for %s: %w", s.Competitor, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDistributions writes one column per competitor and one row per trial.
// Distributions must share a trial count.
func WriteDistributions(w io.Writer, dists []models.ScoreDistribution) error {
	if len(dists) == 0 {
		return nil
	}
	trials := len(dists[0].Scores)
	header := make([]string, len(dists))
	for i, d := range dists {
		if len(d.Scores) != trials {
			return fmt.Errorf("%s has %d scores, expected %d", d.Competitor, len(d.Scores), trials)
		}
		header[i] = d.Competitor
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	row := make([]string, len(dists))
	for t := 0; t < trials; t++ {
		for i, d := range dists {
			row[i] = formatFloat(d.Scores[t])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write trial %d: %w", t, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLineups writes one row per selected competitor, grouped by lineup in final order
func WriteLineups(w io.Writer, set models.FinalLineupSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lineupHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, l := range set.Lineups {
		for _, p := range l.Players {
			row := []string{
				strconv.Itoa(l.ID),
				l.Key.String(),
				p.Name,
				p.PairingID,
				strconv.Itoa(p.Salary),
				formatFloat(p.Projection),
				formatFloat(l.TotalProjection),
				strconv.Itoa(l.TotalSalary),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write lineup %d: %w", l.ID, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
