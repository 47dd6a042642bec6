package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/stream"
)

func TestSampleTrials(t *testing.T) {
	for k := 0; k < 200; k++ {
		picked, err := SampleTrials(50, 20, stream.New(1, stream.Projections, k))
		require.NoError(t, err)
		require.Len(t, picked, 20)
		for i := 1; i < len(picked); i++ {
			require.Less(t, picked[i-1], picked[i], "indices are strictly ascending and distinct")
		}
		require.GreaterOrEqual(t, picked[0], 0)
		require.Less(t, picked[len(picked)-1], 50)
	}
}

func TestSampleTrialsFullBucket(t *testing.T) {
	picked, err := SampleTrials(5, 5, stream.New(1, stream.Projections, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, picked)
}

func TestSampleTrialsInvalidBucket(t *testing.T) {
	_, err := SampleTrials(5, 0, stream.New(1, stream.Projections, 0))
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = SampleTrials(5, 6, stream.New(1, stream.Projections, 0))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSampleTrialsReproducible(t *testing.T) {
	first, err := SampleTrials(1000, 15, stream.New(8, stream.Projections, 3))
	require.NoError(t, err)
	second, err := SampleTrials(1000, 15, stream.New(8, stream.Projections, 3))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildProjectionSet(t *testing.T) {
	distributions := []models.ScoreDistribution{
		{PairingID: "1", Competitor: "Alpha", Scores: []float64{10, 20, 30, 40}},
		{PairingID: "1", Competitor: "Bravo", Scores: []float64{40, 30, 20, 10}},
		{PairingID: "2", Competitor: "Charlie", Scores: []float64{1, 2, 3, 4}},
	}
	salaries := models.SalaryPool{"Alpha": 9000, "Bravo": 7500}

	set := BuildProjectionSet(4, []int{1, 3}, distributions, salaries)

	assert.Equal(t, 4, set.Index)
	assert.Equal(t, []int{1, 3}, set.TrialIndices)
	require.Len(t, set.Entries, 2, "competitors without a salary are dropped")
	assert.Equal(t, models.ProjectionEntry{Competitor: "Alpha", PairingID: "1", Projection: 30, Salary: 9000}, set.Entries[0])
	assert.Equal(t, models.ProjectionEntry{Competitor: "Bravo", PairingID: "1", Projection: 20, Salary: 7500}, set.Entries[1])
}
