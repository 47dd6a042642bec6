package models

// CompetitorStats are one competitor's totals for a simulated match
type CompetitorStats struct {
	GamesWon     int  `json:"games_won"`
	GamesLost    int  `json:"games_lost"`
	SetsWon      int  `json:"sets_won"`
	SetsLost     int  `json:"sets_lost"`
	Breaks       int  `json:"breaks"`
	Aces         int  `json:"aces"`
	DoubleFaults int  `json:"double_faults"`
	CleanSet     bool `json:"clean_set"`
	StraightSet  bool `json:"straight_set"`
}

// TrialOutcome is the result of one simulated match
type TrialOutcome struct {
	Winner Side            `json:"winner"`
	A      CompetitorStats `json:"a"`
	B      CompetitorStats `json:"b"`
}

// Stats returns the totals for the given side
func (o TrialOutcome) Stats(s Side) CompetitorStats {
	if s == SideA {
		return o.A
	}
	return o.B
}
