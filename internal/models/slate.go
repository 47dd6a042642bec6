package models

// SlateSummary aggregates one competitor's simulated scores in a pairing
type SlateSummary struct {
	PairingID  string  `json:"pairing_id"`
	Competitor string  `json:"competitor"`
	Mean       float64 `json:"mean"`
	P10        float64 `json:"p10"`
	P25        float64 `json:"p25"`
	P50        float64 `json:"p50"`
	P75        float64 `json:"p75"`
	P90        float64 `json:"p90"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
}

// ScoreDistribution holds a competitor's score for every trial, in trial order
type ScoreDistribution struct {
	PairingID  string    `json:"pairing_id"`
	Competitor string    `json:"competitor"`
	Scores     []float64 `json:"scores"`
}

// WinLoss is a competitor's record across all trials
type WinLoss struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// SlateResult is the output of a full slate simulation
type SlateResult struct {
	Trials        int                 `json:"trials"`
	Summaries     []SlateSummary      `json:"summaries"`
	Distributions []ScoreDistribution `json:"distributions"`
	Records       map[string]WinLoss  `json:"records"`
	Skipped       []string            `json:"skipped_pairings,omitempty"`
}

// Distribution looks up the score distribution of a competitor
func (r *SlateResult) Distribution(competitor string) (ScoreDistribution, bool) {
	for _, d := range r.Distributions {
		if d.Competitor == competitor {
			return d, true
		}
	}
	return ScoreDistribution{}, false
}
