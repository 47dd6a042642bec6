package optimizer

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

// PlayerExposure counts how many lineups include a competitor
type PlayerExposure struct {
	Name         string  `json:"name"`
	PoolCount    int     `json:"pool_count"`
	FinalCount   int     `json:"final_count"`
	FinalPercent float64 `json:"final_percent"`
}

// LineupStats summarizes the totals of a group of lineups
type LineupStats struct {
	Count             int     `json:"count"`
	AverageProjection float64 `json:"average_projection"`
	MinProjection     float64 `json:"min_projection"`
	MaxProjection     float64 `json:"max_projection"`
	AverageSalary     float64 `json:"average_salary"`
	MinSalary         int     `json:"min_salary"`
	MaxSalary         int     `json:"max_salary"`
}

// PoolSummary describes the candidate pool next to the final lineup set
type PoolSummary struct {
	Pool                 LineupStats      `json:"pool"`
	Final                LineupStats      `json:"final"`
	DuplicateLineups     int              `json:"duplicate_lineups"`
	SharedPairingLineups int              `json:"shared_pairing_lineups"`
	Exposure             []PlayerExposure `json:"exposure"`
}

// Summarize builds the pool summary and the per-competitor exposure table
func Summarize(pool []models.Lineup, final models.FinalLineupSet) PoolSummary {
	return PoolSummary{
		Pool:                 lineupStats(pool),
		Final:                lineupStats(final.Lineups),
		DuplicateLineups:     duplicateLineups(pool),
		SharedPairingLineups: sharedPairingLineups(pool),
		Exposure:             Exposure(pool, final.Lineups),
	}
}

// Exposure lists every competitor of the pool, sorted by final set count descending then name
func Exposure(pool, final []models.Lineup) []PlayerExposure {
	counts := make(map[string]*PlayerExposure)
	get := func(name string) *PlayerExposure {
		e, ok := counts[name]
		if !ok {
			e = &PlayerExposure{Name: name}
			counts[name] = e
		}
		return e
	}

	for _, l := range pool {
		for _, p := range l.Players {
			get(p.Name).PoolCount++
		}
	}
	for _, l := range final {
		for _, p := range l.Players {
			get(p.Name).FinalCount++
		}
	}

	out := make([]PlayerExposure, 0, len(counts))
	for _, e := range counts {
		if len(final) > 0 {
			e.FinalPercent = float64(e.FinalCount) / float64(len(final)) * 100
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalCount != out[j].FinalCount {
			return out[i].FinalCount > out[j].FinalCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func lineupStats(lineups []models.Lineup) LineupStats {
	if len(lineups) == 0 {
		return LineupStats{}
	}
	projections := make([]float64, len(lineups))
	salaries := make([]float64, len(lineups))
	for i, l := range lineups {
		projections[i] = l.TotalProjection
		salaries[i] = float64(l.TotalSalary)
	}
	return LineupStats{
		Count:             len(lineups),
		AverageProjection: stat.Mean(projections, nil),
		MinProjection:     floats.Min(projections),
		MaxProjection:     floats.Max(projections),
		AverageSalary:     stat.Mean(salaries, nil),
		MinSalary:         int(floats.Min(salaries)),
		MaxSalary:         int(floats.Max(salaries)),
	}
}

// duplicateLineups counts lineups whose competitor set appears more than once
func duplicateLineups(lineups []models.Lineup) int {
	seen := make(map[string]int, len(lineups))
	for _, l := range lineups {
		seen[l.Signature()]++
	}
	n := 0
	for _, c := range seen {
		if c > 1 {
			n += c
		}
	}
	return n
}

func sharedPairingLineups(lineups []models.Lineup) int {
	n := 0
	for _, l := range lineups {
		pairings := make(map[string]struct{}, len(l.Players))
		for _, p := range l.Players {
			pairings[p.PairingID] = struct{}{}
		}
		if len(pairings) < len(l.Players) {
			n++
		}
	}
	return n
}
