// Package scoring turns simulated match statistics into fantasy points.
package scoring

import "github.com/stitts-dev/tennis-sim/internal/models"

// Rules holds the point values of a tennis classic scoring system
type Rules struct {
	MatchPlayed       float64 `json:"match_played"`
	GameWon           float64 `json:"game_won"`
	GameLost          float64 `json:"game_lost"`
	SetWon            float64 `json:"set_won"`
	SetLost           float64 `json:"set_lost"`
	MatchWon          float64 `json:"match_won"`
	Ace               float64 `json:"ace"`
	DoubleFault       float64 `json:"double_fault"`
	Break             float64 `json:"break"`
	CleanSetBonus     float64 `json:"clean_set_bonus"`
	StraightSetsBonus float64 `json:"straight_sets_bonus"`
	NoDoubleFault     float64 `json:"no_double_fault_bonus"`
	AcesBonus         float64 `json:"aces_bonus"`
	AcesBonusMin      int     `json:"aces_bonus_min"`
}

// DraftKings is the DraftKings tennis classic scoring table
var DraftKings = Rules{
	MatchPlayed:       30,
	GameWon:           2.5,
	GameLost:          -2,
	SetWon:            6,
	SetLost:           -3,
	MatchWon:          6,
	Ace:               0.4,
	DoubleFault:       -1,
	Break:             0.75,
	CleanSetBonus:     4,
	StraightSetsBonus: 6,
	NoDoubleFault:     2.5,
	AcesBonus:         2,
	AcesBonusMin:      10,
}

// Score computes the fantasy points for one competitor's match totals.
// Terms are accumulated in a fixed order so identical stats always produce identical bits.
func (r Rules) Score(s models.CompetitorStats) float64 {
	score := r.MatchPlayed
	score += float64(s.GamesWon) * r.GameWon
	score += float64(s.GamesLost) * r.GameLost
	score += float64(s.SetsWon) * r.SetWon
	score += float64(s.SetsLost) * r.SetLost
	if s.SetsWon > s.SetsLost {
		score += r.MatchWon
	}
	score += float64(s.Aces) * r.Ace
	score += float64(s.DoubleFaults) * r.DoubleFault
	score += float64(s.Breaks) * r.Break
	if s.CleanSet {
		score += r.CleanSetBonus
	}
	if s.StraightSet {
		score += r.StraightSetsBonus
	}
	if s.DoubleFaults == 0 {
		score += r.NoDoubleFault
	}
	if s.Aces >= r.AcesBonusMin {
		score += r.AcesBonus
	}
	return score
}

// ScoreOutcome scores both sides of a trial
func (r Rules) ScoreOutcome(o models.TrialOutcome) (a, b float64) {
	return r.Score(o.A), r.Score(o.B)
}

// Score applies the DraftKings table
func Score(s models.CompetitorStats) float64 {
	return DraftKings.Score(s)
}
