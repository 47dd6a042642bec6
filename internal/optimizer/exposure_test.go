package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

func TestExposure(t *testing.T) {
	pool := []models.Lineup{
		lineupOf(t, 1, 90, "A", "B"),
		lineupOf(t, 2, 80, "A", "C"),
		lineupOf(t, 3, 70, "B", "C"),
	}
	final := []models.Lineup{pool[0], pool[1]}

	exposure := Exposure(pool, final)

	require.Len(t, exposure, 3)
	assert.Equal(t, PlayerExposure{Name: "A", PoolCount: 2, FinalCount: 2, FinalPercent: 100}, exposure[0])
	assert.Equal(t, PlayerExposure{Name: "B", PoolCount: 2, FinalCount: 1, FinalPercent: 50}, exposure[1])
	assert.Equal(t, PlayerExposure{Name: "C", PoolCount: 2, FinalCount: 1, FinalPercent: 50}, exposure[2])
}

func TestSummarizePool(t *testing.T) {
	pool := []models.Lineup{
		lineupOf(t, 1, 90, "A", "B"),
		lineupOf(t, 2, 60, "A", "C"),
	}
	pool[1].TotalSalary = 3000
	final := models.FinalLineupSet{Requested: 2, Lineups: pool[:1]}

	s := Summarize(pool, final)

	assert.Equal(t, 2, s.Pool.Count)
	assert.InDelta(t, 75.0, s.Pool.AverageProjection, 1e-9)
	assert.InDelta(t, 60.0, s.Pool.MinProjection, 1e-9)
	assert.InDelta(t, 90.0, s.Pool.MaxProjection, 1e-9)
	assert.Equal(t, 2000, s.Pool.MinSalary)
	assert.Equal(t, 3000, s.Pool.MaxSalary)
	assert.InDelta(t, 2500.0, s.Pool.AverageSalary, 1e-9)
	assert.Equal(t, 1, s.Final.Count)
	assert.Zero(t, s.DuplicateLineups)
	assert.Zero(t, s.SharedPairingLineups)
	assert.Len(t, s.Exposure, 3)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, models.FinalLineupSet{Requested: 3})

	assert.Equal(t, LineupStats{}, s.Pool)
	assert.Equal(t, LineupStats{}, s.Final)
	assert.Empty(t, s.Exposure)
}

func TestDuplicateAndSharedPairingCounts(t *testing.T) {
	a := lineupOf(t, 1, 90, "A", "B")
	b := lineupOf(t, 2, 90, "B", "A")
	c := a
	c.Players = []models.LineupPlayer{{Name: "X", PairingID: "9"}, {Name: "Y", PairingID: "9"}}

	assert.Equal(t, 2, duplicateLineups([]models.Lineup{a, b}))
	assert.Equal(t, 1, sharedPairingLineups([]models.Lineup{a, c}))
}
