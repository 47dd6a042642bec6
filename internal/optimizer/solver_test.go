package optimizer

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForce enumerates every subset and returns the best value, or -Inf when infeasible
func bruteForce(p Problem) float64 {
	n := len(p.Objective)
	best := math.Inf(-1)
	for mask := 0; mask < 1<<n; mask++ {
		count, cost, value := 0, 0, 0.0
		groups := map[int]bool{}
		ok := true
		for i := 0; i < n && ok; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			if groups[p.Groups[i]] {
				ok = false
			}
			groups[p.Groups[i]] = true
			count++
			cost += p.Costs[i]
			value += p.Objective[i]
		}
		if ok && count == p.Cardinality && cost <= p.Budget && value > best {
			best = value
		}
	}
	return best
}

func randomProblem(rng *rand.Rand) Problem {
	n := 4 + rng.IntN(10)
	p := Problem{
		Objective:   make([]float64, n),
		Costs:       make([]int, n),
		Groups:      make([]int, n),
		Cardinality: 1 + rng.IntN(4),
	}
	for i := range n {
		p.Objective[i] = math.Round(rng.Float64()*600) / 10
		p.Costs[i] = 5000 + 100*rng.IntN(60)
		p.Groups[i] = i / 2
	}
	p.Budget = p.Cardinality * (6000 + 100*rng.IntN(40))
	return p
}

func TestBranchAndBoundMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 29))
	solver := BranchAndBound{}

	for i := 0; i < 300; i++ {
		p := randomProblem(rng)
		expected := bruteForce(p)

		picked, err := solver.Solve(context.Background(), p)
		if math.IsInf(expected, -1) {
			require.ErrorIs(t, err, ErrInfeasible, "case %d", i)
			continue
		}
		require.NoError(t, err, "case %d", i)
		require.Len(t, picked, p.Cardinality)

		value, cost := 0.0, 0
		groups := map[int]bool{}
		for _, idx := range picked {
			require.False(t, groups[p.Groups[idx]], "case %d picks two items of group %d", i, p.Groups[idx])
			groups[p.Groups[idx]] = true
			value += p.Objective[idx]
			cost += p.Costs[idx]
		}
		require.LessOrEqual(t, cost, p.Budget)
		require.InDelta(t, expected, value, 1e-6, "case %d", i)
	}
}

func TestBranchAndBoundRespectsGroups(t *testing.T) {
	p := Problem{
		Objective:   []float64{50, 49, 10, 9},
		Costs:       []int{1, 1, 1, 1},
		Groups:      []int{0, 0, 1, 1},
		Budget:      10,
		Cardinality: 2,
	}

	picked, err := BranchAndBound{}.Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, picked)
}

func TestBranchAndBoundTiesResolveByIndex(t *testing.T) {
	p := Problem{
		Objective:   []float64{10, 10, 10, 10},
		Costs:       []int{1, 1, 1, 1},
		Groups:      []int{0, 1, 2, 3},
		Budget:      10,
		Cardinality: 2,
	}

	for i := 0; i < 5; i++ {
		picked, err := BranchAndBound{}.Solve(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1}, picked)
	}
}

func TestBranchAndBoundInfeasible(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
	}{
		{
			name: "too few items",
			p:    Problem{Objective: []float64{1}, Costs: []int{1}, Groups: []int{0}, Budget: 10, Cardinality: 2},
		},
		{
			name: "budget too small",
			p:    Problem{Objective: []float64{1, 2}, Costs: []int{6, 6}, Groups: []int{0, 1}, Budget: 11, Cardinality: 2},
		},
		{
			name: "every item in one group",
			p:    Problem{Objective: []float64{1, 2, 3}, Costs: []int{1, 1, 1}, Groups: []int{4, 4, 4}, Budget: 10, Cardinality: 2},
		},
		{
			name: "empty problem",
			p:    Problem{Cardinality: 1, Budget: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BranchAndBound{}.Solve(context.Background(), tt.p)
			assert.ErrorIs(t, err, ErrInfeasible)
		})
	}
}

func TestProblemValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
	}{
		{name: "length mismatch", p: Problem{Objective: []float64{1}, Costs: []int{1, 2}, Groups: []int{0}, Cardinality: 1}},
		{name: "zero cardinality", p: Problem{Objective: []float64{1}, Costs: []int{1}, Groups: []int{0}}},
		{name: "negative budget", p: Problem{Objective: []float64{1}, Costs: []int{1}, Groups: []int{0}, Cardinality: 1, Budget: -1}},
		{name: "negative cost", p: Problem{Objective: []float64{1}, Costs: []int{-1}, Groups: []int{0}, Cardinality: 1}},
		{name: "nan objective", p: Problem{Objective: []float64{math.NaN()}, Costs: []int{1}, Groups: []int{0}, Cardinality: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BranchAndBound{}.Solve(context.Background(), tt.p)
			assert.ErrorIs(t, err, ErrInvalidProblem)
		})
	}
}

func TestBranchAndBoundCanceled(t *testing.T) {
	p := Problem{
		Objective:   []float64{3, 2, 1},
		Costs:       []int{1, 1, 1},
		Groups:      []int{0, 1, 2},
		Budget:      10,
		Cardinality: 2,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BranchAndBound{}.Solve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuffixMinCosts(t *testing.T) {
	costs := []int{5, 1, 3}
	order := []int{0, 1, 2}

	table := suffixMinCosts(costs, order, 2)

	assert.Equal(t, []int{0, 1, 4}, table[0])
	assert.Equal(t, []int{0, 1, 4}, table[1])
	assert.Equal(t, 3, table[2][1])
	assert.Greater(t, table[2][2], 1<<40)
	assert.Greater(t, table[3][1], 1<<40)
}
