package optimizer

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

// SampleTrials draws k distinct indices uniformly from [0, n) and returns them ascending.
// It runs a partial Fisher-Yates shuffle, so it costs O(n) memory and O(k) swaps.
func SampleTrials(n, k int, rng *rand.Rand) ([]int, error) {
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: bucket size %d outside [1, %d]", ErrInvalidSettings, k, n)
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := pool[:k:k]
	sort.Ints(picked)
	return picked, nil
}

// BuildProjectionSet averages each competitor's scores over the given trials and joins the
// result with the salary pool. Competitors without a salary are left out of the set.
func BuildProjectionSet(index int, trials []int, distributions []models.ScoreDistribution, salaries models.SalaryPool) models.ProjectionSet {
	set := models.ProjectionSet{
		Index:        index,
		TrialIndices: trials,
		Entries:      make([]models.ProjectionEntry, 0, len(distributions)),
	}

	bucket := make([]float64, len(trials))
	for _, d := range distributions {
		salary, ok := salaries[d.Competitor]
		if !ok {
			continue
		}
		for i, t := range trials {
			bucket[i] = d.Scores[t]
		}
		set.Entries = append(set.Entries, models.ProjectionEntry{
			Competitor: d.Competitor,
			PairingID:  d.PairingID,
			Projection: stat.Mean(bucket, nil),
			Salary:     salary,
		})
	}
	return set
}
