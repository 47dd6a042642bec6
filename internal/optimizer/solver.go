package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInfeasible is returned by a Solver when no assignment satisfies every constraint
	ErrInfeasible = errors.New("no feasible selection")

	ErrInvalidProblem = errors.New("invalid selection problem")
)

const (
	improvementEpsilon = 1e-9
	ctxCheckInterval   = 4096
)

// Problem is a 0/1 selection program:
//
//	maximize   sum(Objective[i] * x[i])
//	subject to sum(Costs[i] * x[i]) <= Budget
//	           sum(x[i]) == Cardinality
//	           at most one selected item per distinct Groups value
type Problem struct {
	Objective   []float64
	Costs       []int
	Groups      []int
	Budget      int
	Cardinality int
}

// Validate checks the problem is well formed. It does not check feasibility.
func (p Problem) Validate() error {
	n := len(p.Objective)
	if len(p.Costs) != n || len(p.Groups) != n {
		return fmt.Errorf("%w: %d objectives, %d costs, %d groups", ErrInvalidProblem, n, len(p.Costs), len(p.Groups))
	}
	if p.Cardinality < 1 {
		return fmt.Errorf("%w: cardinality must be positive", ErrInvalidProblem)
	}
	if p.Budget < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidProblem)
	}
	for i := range n {
		if p.Costs[i] < 0 {
			return fmt.Errorf("%w: item %d has negative cost", ErrInvalidProblem, i)
		}
		if math.IsNaN(p.Objective[i]) || math.IsInf(p.Objective[i], 0) {
			return fmt.Errorf("%w: item %d has non-finite objective", ErrInvalidProblem, i)
		}
	}
	return nil
}

// Solver finds an optimal selection. Returned indices refer to the problem's items
// in ascending order.
type Solver interface {
	Solve(ctx context.Context, p Problem) ([]int, error)
}

// BranchAndBound is an exact depth-first solver. Items are explored in descending objective
// order (ties by index) and a selection only replaces the incumbent when it is strictly
// better, so equal-valued optima resolve the same way on every run.
type BranchAndBound struct{}

type bbSearch struct {
	ctx   context.Context
	p     Problem
	order []int

	// prefix[i] = sum of objectives of order[0:i]
	prefix []float64
	// minCost[pos][r] = cheapest total cost of r items from order[pos:]
	minCost [][]int

	groupUsed []bool
	groupOf   []int

	picked    []int
	best      []int
	bestValue float64
	found     bool
	nodes     int
	err       error
}

// Solve implements Solver
func (BranchAndBound) Solve(ctx context.Context, p Problem) ([]int, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(p.Objective)
	k := p.Cardinality
	if n < k {
		return nil, ErrInfeasible
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Objective[order[a]] > p.Objective[order[b]]
	})

	s := &bbSearch{
		ctx:       ctx,
		p:         p,
		order:     order,
		prefix:    make([]float64, n+1),
		minCost:   suffixMinCosts(p.Costs, order, k),
		groupOf:   compactGroups(p.Groups, order),
		picked:    make([]int, 0, k),
		bestValue: math.Inf(-1),
	}
	s.groupUsed = make([]bool, n)
	for i, idx := range order {
		s.prefix[i+1] = s.prefix[i] + p.Objective[idx]
	}

	s.search(0, 0, 0)
	if s.err != nil {
		return nil, s.err
	}
	if !s.found {
		return nil, ErrInfeasible
	}

	out := make([]int, len(s.best))
	copy(out, s.best)
	sort.Ints(out)
	return out, nil
}

func (s *bbSearch) search(pos, cost int, value float64) {
	if s.err != nil {
		return
	}
	s.nodes++
	if s.nodes%ctxCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}

	k := s.p.Cardinality
	remaining := k - len(s.picked)
	if remaining == 0 {
		if !s.found || value > s.bestValue+improvementEpsilon {
			s.found = true
			s.bestValue = value
			s.best = append(s.best[:0], s.picked...)
		}
		return
	}

	n := len(s.order)
	if n-pos < remaining {
		return
	}
	if cost+s.minCost[pos][remaining] > s.p.Budget {
		return
	}
	// the best remaining items form a relaxation that ignores budget and groups
	bound := value + s.prefix[pos+remaining] - s.prefix[pos]
	if s.found && bound <= s.bestValue+improvementEpsilon {
		return
	}

	idx := s.order[pos]
	g := s.groupOf[pos]
	if !s.groupUsed[g] && cost+s.p.Costs[idx] <= s.p.Budget {
		s.groupUsed[g] = true
		s.picked = append(s.picked, idx)
		s.search(pos+1, cost+s.p.Costs[idx], value+s.p.Objective[idx])
		s.picked = s.picked[:len(s.picked)-1]
		s.groupUsed[g] = false
	}
	s.search(pos+1, cost, value)
}

// suffixMinCosts tabulates, for every position of order, the cheapest way to pick
// r = 0..k items from the suffix starting there. Unreachable entries are MaxInt/2.
func suffixMinCosts(costs []int, order []int, k int) [][]int {
	const unreachable = math.MaxInt / 2
	n := len(order)
	table := make([][]int, n+1)
	sorted := make([]int, 0, n)

	for pos := n; pos >= 0; pos-- {
		if pos < n {
			c := costs[order[pos]]
			at := sort.SearchInts(sorted, c)
			sorted = append(sorted, 0)
			copy(sorted[at+1:], sorted[at:])
			sorted[at] = c
		}
		row := make([]int, k+1)
		sum := 0
		for r := 1; r <= k; r++ {
			if r > len(sorted) {
				row[r] = unreachable
				continue
			}
			sum += sorted[r-1]
			row[r] = sum
		}
		table[pos] = row
	}
	return table
}

// compactGroups maps arbitrary group values onto 0..n-1, indexed by search position
func compactGroups(groups []int, order []int) []int {
	ids := make(map[int]int, len(groups))
	out := make([]int, len(order))
	for pos, idx := range order {
		g, ok := ids[groups[idx]]
		if !ok {
			g = len(ids)
			ids[groups[idx]] = g
		}
		out[pos] = g
	}
	return out
}
