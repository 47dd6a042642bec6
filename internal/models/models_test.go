package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetrics() Metrics {
	return Metrics{
		FirstServePct:           0.62,
		FirstServeWonPct:        0.74,
		SecondServeWonPct:       0.52,
		FirstServeReturnWonPct:  0.29,
		SecondServeReturnWonPct: 0.50,
		AcesPerMatch:            6.2,
		DoubleFaultsPerMatch:    2.4,
	}
}

func TestMetricClamp(t *testing.T) {
	assert.Equal(t, 1.0, FirstServePct.Clamp(1.3))
	assert.Equal(t, 0.0, SecondServeWonPct.Clamp(-0.2))
	assert.Equal(t, 0.5, FirstServeWonPct.Clamp(0.5))
	assert.Equal(t, 0.0, AcesPerMatch.Clamp(-1))
	assert.Equal(t, 25.0, AcesPerMatch.Clamp(25))
}

func TestParseMetric(t *testing.T) {
	m, ok := ParseMetric("acespermatch")
	require.True(t, ok)
	assert.Equal(t, AcesPerMatch, m)

	_, ok = ParseMetric("Height")
	assert.False(t, ok)

	for _, m := range AllMetrics() {
		parsed, ok := ParseMetric(m.String())
		require.True(t, ok, m.String())
		assert.Equal(t, m, parsed)
	}
}

func TestMetricsWithDoesNotMutate(t *testing.T) {
	m := validMetrics()
	changed := m.With(AcesPerMatch, 11)

	assert.Equal(t, 6.2, m.AcesPerMatch)
	assert.Equal(t, 11.0, changed.Get(AcesPerMatch))
}

func TestNewCompetitorProfile(t *testing.T) {
	tests := []struct {
		name    string
		cname   string
		metrics func() Metrics
		wantErr bool
	}{
		{name: "valid", cname: " Alpha ", metrics: validMetrics},
		{name: "empty name", cname: "  ", metrics: validMetrics, wantErr: true},
		{name: "proportion above one", cname: "Alpha", metrics: func() Metrics {
			m := validMetrics()
			m.FirstServePct = 1.2
			return m
		}, wantErr: true},
		{name: "negative rate", cname: "Alpha", metrics: func() Metrics {
			m := validMetrics()
			m.DoubleFaultsPerMatch = -1
			return m
		}, wantErr: true},
		{name: "nan", cname: "Alpha", metrics: func() Metrics {
			m := validMetrics()
			m.AcesPerMatch = math.NaN()
			return m
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCompetitorProfile(tt.cname, tt.metrics())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProfile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alpha", p.Name)
		})
	}
}

func TestNewPairing(t *testing.T) {
	a := RosterEntry{PairingID: "1", Name: "Alpha", Opponent: "Bravo", Metrics: validMetrics()}
	b := RosterEntry{PairingID: "1", Name: "Bravo", Opponent: "Alpha", Metrics: validMetrics()}

	p, err := NewPairing("1", []RosterEntry{a, b})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", p.Competitor(SideA).Name)
	assert.Equal(t, "Bravo", p.Competitor(SideB).Name)

	_, err = NewPairing("1", []RosterEntry{a})
	assert.ErrorIs(t, err, ErrMalformedPairing)

	_, err = NewPairing("1", []RosterEntry{a, b, a})
	assert.ErrorIs(t, err, ErrMalformedPairing)

	_, err = NewPairing("1", []RosterEntry{a, a})
	assert.ErrorIs(t, err, ErrMalformedPairing)
}

func TestGroupRoster(t *testing.T) {
	entries := []RosterEntry{
		{PairingID: "7", Name: "A"},
		{PairingID: "3", Name: "B"},
		{PairingID: "7", Name: "C"},
		{PairingID: "3", Name: "D"},
	}

	ids, groups := GroupRoster(entries)

	assert.Equal(t, []string{"7", "3"}, ids)
	assert.Equal(t, "A", groups["7"][0].Name)
	assert.Equal(t, "C", groups["7"][1].Name)
	assert.Len(t, groups["3"], 2)
}

func TestSideOther(t *testing.T) {
	assert.Equal(t, SideB, SideA.Other())
	assert.Equal(t, SideA, SideB.Other())
}

func players() []LineupPlayer {
	return []LineupPlayer{
		{Name: "A", PairingID: "1", Salary: 9000, Projection: 55.5},
		{Name: "C", PairingID: "2", Salary: 8000, Projection: 50},
		{Name: "E", PairingID: "3", Salary: 7000, Projection: 44.25},
	}
}

func TestNewLineup(t *testing.T) {
	l, err := NewLineup(players(), 25000, 3)
	require.NoError(t, err)

	assert.Equal(t, 24000, l.TotalSalary)
	assert.InDelta(t, 149.75, l.TotalProjection, 1e-9)
	assert.Equal(t, "A|C|E", l.Signature())
}

func TestNewLineupRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		players func() []LineupPlayer
		cap     int
		size    int
	}{
		{name: "over cap", players: players, cap: 23999, size: 3},
		{name: "wrong size", players: players, cap: 50000, size: 4},
		{name: "shared pairing", players: func() []LineupPlayer {
			p := players()
			p[2].PairingID = "1"
			return p
		}, cap: 50000, size: 3},
		{name: "duplicate competitor", players: func() []LineupPlayer {
			p := players()
			p[2] = p[0]
			p[2].PairingID = "9"
			return p
		}, cap: 50000, size: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLineup(tt.players(), tt.cap, tt.size)
			assert.ErrorIs(t, err, ErrInvalidLineup)
		})
	}
}

func TestLineupKeyIsOrderIndependent(t *testing.T) {
	p := players()
	reversed := []LineupPlayer{p[2], p[1], p[0]}

	first, err := NewLineup(p, 50000, 3)
	require.NoError(t, err)
	second, err := NewLineup(reversed, 50000, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Signature(), second.Signature())
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, 3, first.Overlap(second))
}

func TestLineupDoesNotAliasInput(t *testing.T) {
	p := players()
	l, err := NewLineup(p, 50000, 3)
	require.NoError(t, err)

	p[0].Name = "Z"
	assert.Equal(t, "A", l.Players[0].Name)
}

func TestFinalLineupSetPartial(t *testing.T) {
	assert.True(t, FinalLineupSet{Requested: 3, Lineups: make([]Lineup, 2)}.Partial())
	assert.False(t, FinalLineupSet{Requested: 2, Lineups: make([]Lineup, 2)}.Partial())
}

func TestNewSalaryPool(t *testing.T) {
	pool := NewSalaryPool([]SalaryEntry{{Name: " Alpha ", Salary: 9000}, {Name: "Alpha", Salary: 9100}})

	assert.Equal(t, 9100, pool["Alpha"])
	assert.Len(t, pool, 1)
}

func TestLineupPoolDedupesAndNumbers(t *testing.T) {
	p := players()
	first, err := NewLineup(p, 50000, 3)
	require.NoError(t, err)
	same, err := NewLineup([]LineupPlayer{p[2], p[0], p[1]}, 50000, 3)
	require.NoError(t, err)
	p[0].Name = "X"
	other, err := NewLineup(p, 50000, 3)
	require.NoError(t, err)

	pool := NewLineupPool()
	assert.True(t, pool.Add(first))
	assert.False(t, pool.Add(same))
	assert.True(t, pool.Add(other))

	got := pool.Lineups()
	require.Len(t, got, 2)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
	assert.Equal(t, "C|E|X", got[1].Signature())
}
