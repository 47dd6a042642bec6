package optimizer

import (
	"sort"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

// SelectDiverse greedily picks up to numLineups lineups by descending total projection.
// A candidate is accepted only if it shares at most rosterSize-minUnique competitors with
// the union of everything accepted so far. Equal projections keep their input order.
func SelectDiverse(candidates []models.Lineup, numLineups, rosterSize, minUnique int) models.FinalLineupSet {
	final := models.FinalLineupSet{Requested: numLineups}
	if len(candidates) == 0 || numLineups <= 0 {
		return final
	}

	sorted := make([]models.Lineup, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalProjection > sorted[j].TotalProjection
	})

	maxOverlap := rosterSize - minUnique
	selected := make(map[string]struct{})

	for _, lineup := range sorted {
		if len(final.Lineups) >= numLineups {
			break
		}

		overlap := 0
		for _, p := range lineup.Players {
			if _, ok := selected[p.Name]; ok {
				overlap++
			}
		}
		if overlap > maxOverlap {
			continue
		}

		final.Lineups = append(final.Lineups, lineup)
		for _, p := range lineup.Players {
			selected[p.Name] = struct{}{}
		}
	}

	return final
}
