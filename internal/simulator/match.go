package simulator

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

const (
	// ExpectedServiceGames is the assumed number of service games per player per best-of-3 match
	ExpectedServiceGames = 10

	minServerEdge = 0.01
	maxServerEdge = 0.99

	setsToWin      = 2
	gamesToWinSet  = 6
	setWinningLead = 2
)

// ServeEffectiveness is the share of service points a server is expected to win
func ServeEffectiveness(m models.Metrics) float64 {
	return m.FirstServePct*m.FirstServeWonPct + (1-m.FirstServePct)*m.SecondServeWonPct
}

// ReturnEffectiveness is the mean of the returner's first and second serve return win rates
func ReturnEffectiveness(m models.Metrics) float64 {
	return (m.FirstServeReturnWonPct + m.SecondServeReturnWonPct) / 2
}

// ServerEdge is the probability the server holds, clamped to [0.01, 0.99]
func ServerEdge(server, returner models.Metrics) float64 {
	edge := ServeEffectiveness(server) * (1 - ReturnEffectiveness(returner))
	return math.Min(math.Max(edge, minServerEdge), maxServerEdge)
}

type gameResult struct {
	serverWon    bool
	aces         int
	doubleFaults int
}

// playGame resolves one service game. Aces and double faults are drawn from Poisson
// processes whose per-game rate is the per-match rate over ExpectedServiceGames.
func playGame(server, returner models.Metrics, rng *rand.Rand) gameResult {
	edge := ServerEdge(server, returner)
	won := rng.Float64() < edge

	aces := distuv.Poisson{Lambda: server.AcesPerMatch / ExpectedServiceGames, Src: rng}.Rand()
	faults := distuv.Poisson{Lambda: server.DoubleFaultsPerMatch / ExpectedServiceGames, Src: rng}.Rand()

	return gameResult{serverWon: won, aces: int(aces), doubleFaults: int(faults)}
}

type setResult struct {
	games        [2]int
	breaks       [2]int
	aces         [2]int
	doubleFaults [2]int
}

func (s setResult) winner() models.Side {
	if s.games[models.SideA] > s.games[models.SideB] {
		return models.SideA
	}
	return models.SideB
}

// setOver reports whether one side has at least six games and a two game lead.
// There is no tiebreak: from 6-6 the set continues until the lead is two.
func setOver(a, b int) bool {
	lead := a - b
	if lead < 0 {
		lead = -lead
	}
	return max(a, b) >= gamesToWinSet && lead >= setWinningLead
}

// playSet alternates serve starting with side A
func playSet(a, b models.Metrics, rng *rand.Rand) setResult {
	var res setResult
	players := [2]models.Metrics{a, b}

	for !setOver(res.games[models.SideA], res.games[models.SideB]) {
		server := models.SideA
		if (res.games[models.SideA]+res.games[models.SideB])%2 == 1 {
			server = models.SideB
		}
		returner := server.Other()

		g := playGame(players[server], players[returner], rng)
		res.aces[server] += g.aces
		res.doubleFaults[server] += g.doubleFaults
		if g.serverWon {
			res.games[server]++
		} else {
			res.games[returner]++
			res.breaks[returner]++
		}
	}
	return res
}

// SimulateMatch plays a best-of-3 match between two already pre-match-perturbed profiles.
// In-match variance is re-applied to both profiles before every set.
func SimulateMatch(a, b models.CompetitorProfile, inMatchVariance float64, rng *rand.Rand) models.TrialOutcome {
	var (
		sets     [2]int
		games    [2]int
		breaks   [2]int
		aces     [2]int
		faults   [2]int
		cleanSet [2]bool
	)

	for sets[models.SideA] < setsToWin && sets[models.SideB] < setsToWin {
		aSet := Perturb(a, inMatchVariance, rng)
		bSet := Perturb(b, inMatchVariance, rng)

		s := playSet(aSet.Metrics, bSet.Metrics, rng)
		for side := range 2 {
			games[side] += s.games[side]
			breaks[side] += s.breaks[side]
			aces[side] += s.aces[side]
			faults[side] += s.doubleFaults[side]
		}

		w := s.winner()
		sets[w]++
		if s.games[w] == gamesToWinSet && s.games[w.Other()] == 0 {
			cleanSet[w] = true
		}
	}

	winner := models.SideA
	if sets[models.SideB] > sets[models.SideA] {
		winner = models.SideB
	}

	stats := func(side models.Side) models.CompetitorStats {
		opp := side.Other()
		st := models.CompetitorStats{
			GamesWon:     games[side],
			GamesLost:    games[opp],
			SetsWon:      sets[side],
			SetsLost:     sets[opp],
			Breaks:       breaks[side],
			Aces:         aces[side],
			DoubleFaults: faults[side],
		}
		if side == winner {
			st.CleanSet = cleanSet[side]
			st.StraightSet = sets[side] == setsToWin && sets[opp] == 0
		}
		return st
	}

	return models.TrialOutcome{
		Winner: winner,
		A:      stats(models.SideA),
		B:      stats(models.SideB),
	}
}
