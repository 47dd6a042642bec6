// Package optimizer turns simulated score distributions into a diverse set of lineups.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/stream"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

var (
	ErrInvalidSettings  = errors.New("invalid optimizer settings")
	ErrInfeasibleLineup = errors.New("infeasible lineup")
	ErrEmptyProjection  = errors.New("no projection set has a draftable competitor")
)

// Settings configures projection sampling, lineup building and selection
type Settings struct {
	BucketSize       int    `json:"bucket_size"`
	NumLineups       int    `json:"num_lineups"`
	PoolMultiple     int    `json:"pool_multiple"`
	SalaryCap        int    `json:"salary_cap"`
	RosterSize       int    `json:"roster_size"`
	MinUniquePlayers int    `json:"min_unique_players"`
	Workers          int    `json:"workers"`
	Seed             uint64 `json:"seed"`
}

// Validate rejects settings that cannot produce a lineup set
func (s Settings) Validate() error {
	switch {
	case s.BucketSize < 1:
		return fmt.Errorf("%w: bucket_size must be at least 1", ErrInvalidSettings)
	case s.NumLineups < 1:
		return fmt.Errorf("%w: num_lineups must be at least 1", ErrInvalidSettings)
	case s.PoolMultiple < 1:
		return fmt.Errorf("%w: pool_multiple must be at least 1", ErrInvalidSettings)
	case s.RosterSize < 1:
		return fmt.Errorf("%w: roster_size must be at least 1", ErrInvalidSettings)
	case s.SalaryCap < 0:
		return fmt.Errorf("%w: salary_cap must not be negative", ErrInvalidSettings)
	case s.MinUniquePlayers < 0 || s.MinUniquePlayers > s.RosterSize:
		return fmt.Errorf("%w: min_unique_players must be within [0, %d]", ErrInvalidSettings, s.RosterSize)
	}
	return nil
}

// PoolSize is the number of projection sets built, which bounds the candidate pool
func (s Settings) PoolSize() int {
	return s.NumLineups * s.PoolMultiple
}

// Builder runs projection sampling, per-set lineup solving and diversity selection
type Builder struct {
	settings Settings
	solver   Solver
	metrics  *metrics.Collector
	log      *logrus.Entry
}

// Option customizes a Builder
type Option func(*Builder)

// WithSolver replaces the default branch-and-bound solver
func WithSolver(s Solver) Option {
	return func(b *Builder) { b.solver = s }
}

// WithMetrics attaches a metrics collector
func WithMetrics(c *metrics.Collector) Option {
	return func(b *Builder) { b.metrics = c }
}

// WithLogger replaces the default logger entry
func WithLogger(l *logrus.Entry) Option {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a lineup builder
func NewBuilder(settings Settings, opts ...Option) *Builder {
	b := &Builder{
		settings: settings,
		solver:   BranchAndBound{},
		log:      logger.WithService("optimizer"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Result is the output of a full optimizer run
type Result struct {
	ProjectionSets []models.ProjectionSet `json:"projection_sets"`
	Pool           []models.Lineup        `json:"pool"`
	Final          models.FinalLineupSet  `json:"final"`
	Summary        PoolSummary            `json:"summary"`
}

// Run samples projection sets, builds the candidate pool and selects the final lineups
func (b *Builder) Run(ctx context.Context, distributions []models.ScoreDistribution, salaries models.SalaryPool) (*Result, error) {
	if err := b.settings.Validate(); err != nil {
		return nil, err
	}

	sets, err := b.Project(ctx, distributions, salaries)
	if err != nil {
		return nil, err
	}
	pool, err := b.BuildPool(ctx, sets)
	if err != nil {
		return nil, err
	}
	candidates := pool.Lineups()
	final := b.Select(candidates)

	return &Result{
		ProjectionSets: sets,
		Pool:           candidates,
		Final:          final,
		Summary:        Summarize(candidates, final),
	}, nil
}

func (b *Builder) workers() int {
	if b.settings.Workers > 0 {
		return b.settings.Workers
	}
	return runtime.NumCPU()
}

// Project draws PoolSize projection sets. Set k always uses the k-th projection stream,
// so the sets do not depend on worker count.
func (b *Builder) Project(ctx context.Context, distributions []models.ScoreDistribution, salaries models.SalaryPool) ([]models.ProjectionSet, error) {
	if len(distributions) == 0 {
		return nil, fmt.Errorf("%w: no score distributions", ErrEmptyProjection)
	}
	started := time.Now()
	trials := len(distributions[0].Scores)
	for _, d := range distributions {
		if len(d.Scores) != trials {
			return nil, fmt.Errorf("%w: %s has %d scores, expected %d", ErrInvalidSettings, d.Competitor, len(d.Scores), trials)
		}
	}
	if b.settings.BucketSize > trials {
		return nil, fmt.Errorf("%w: bucket size %d exceeds %d trials", ErrInvalidSettings, b.settings.BucketSize, trials)
	}

	sets := make([]models.ProjectionSet, b.settings.PoolSize())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for k := range sets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := stream.New(b.settings.Seed, stream.Projections, k)
			picked, err := SampleTrials(trials, b.settings.BucketSize, rng)
			if err != nil {
				return err
			}
			sets[k] = BuildProjectionSet(k, picked, distributions, salaries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	draftable := 0
	for _, set := range sets {
		b.metrics.ProjectionSetBuilt()
		logger.WithProjectionSet(set.Index).WithFields(logrus.Fields{
			"trials":      set.TrialIndices,
			"competitors": len(set.Entries),
		}).Debug("Projection set sampled")
		if len(set.Entries) > 0 {
			draftable++
		}
	}
	if draftable == 0 {
		return nil, ErrEmptyProjection
	}

	b.metrics.ObserveStage(metrics.StageProject, time.Since(started))
	return sets, nil
}

// BuildLineup solves one projection set
func (b *Builder) BuildLineup(ctx context.Context, set models.ProjectionSet) (models.Lineup, error) {
	problem := Problem{
		Objective:   make([]float64, len(set.Entries)),
		Costs:       make([]int, len(set.Entries)),
		Groups:      make([]int, len(set.Entries)),
		Budget:      b.settings.SalaryCap,
		Cardinality: b.settings.RosterSize,
	}
	groups := make(map[string]int)
	for i, e := range set.Entries {
		g, ok := groups[e.PairingID]
		if !ok {
			g = len(groups)
			groups[e.PairingID] = g
		}
		problem.Objective[i] = e.Projection
		problem.Costs[i] = e.Salary
		problem.Groups[i] = g
	}

	picked, err := b.solver.Solve(ctx, problem)
	if errors.Is(err, ErrInfeasible) {
		return models.Lineup{}, fmt.Errorf("%w: projection set %d", ErrInfeasibleLineup, set.Index)
	}
	if err != nil {
		return models.Lineup{}, fmt.Errorf("projection set %d: %w", set.Index, err)
	}

	players := make([]models.LineupPlayer, len(picked))
	for i, idx := range picked {
		e := set.Entries[idx]
		players[i] = models.LineupPlayer{
			Name:       e.Competitor,
			PairingID:  e.PairingID,
			Salary:     e.Salary,
			Projection: e.Projection,
		}
	}
	lineup, err := models.NewLineup(players, b.settings.SalaryCap, b.settings.RosterSize)
	if err != nil {
		return models.Lineup{}, fmt.Errorf("projection set %d: %w", set.Index, err)
	}
	lineup.ProjectionSet = set.Index
	return lineup, nil
}

// BuildPool solves every projection set in parallel, then inserts the lineups into the pool
// in projection set order. Infeasible sets are logged and skipped.
func (b *Builder) BuildPool(ctx context.Context, sets []models.ProjectionSet) (*models.LineupPool, error) {
	started := time.Now()
	type built struct {
		lineup models.Lineup
		err    error
	}
	results := make([]built, len(sets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, set := range sets {
		g.Go(func() error {
			l, err := b.BuildLineup(gctx, set)
			if err != nil && !errors.Is(err, ErrInfeasibleLineup) {
				return err
			}
			results[i] = built{lineup: l, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := models.NewLineupPool()
	skipped, duplicates := 0, 0
	for i, r := range results {
		log := logger.WithProjectionSet(sets[i].Index)
		if r.err != nil {
			log.WithError(r.err).Warn("Skipping projection set without a feasible lineup")
			b.metrics.LineupRejected(metrics.RejectInfeasible)
			skipped++
			continue
		}
		if !pool.Add(r.lineup) {
			log.WithField("signature", r.lineup.Signature()).Debug("Duplicate lineup rejected")
			b.metrics.LineupRejected(metrics.RejectDuplicate)
			duplicates++
			continue
		}
		b.metrics.LineupBuilt()
	}

	elapsed := time.Since(started)
	b.metrics.ObserveStage(metrics.StageBuild, elapsed)
	b.log.WithFields(logrus.Fields{
		"projection_sets": len(sets),
		"pool_size":       pool.Len(),
		"infeasible":      skipped,
		"duplicates":      duplicates,
		"duration":        elapsed.String(),
	}).Info("Lineup pool built")

	return pool, nil
}

// Select applies the diversity rule to the pool
func (b *Builder) Select(candidates []models.Lineup) models.FinalLineupSet {
	started := time.Now()
	final := SelectDiverse(candidates, b.settings.NumLineups, b.settings.RosterSize, b.settings.MinUniquePlayers)

	b.metrics.LineupsSelected(len(final.Lineups))
	b.metrics.ObserveStage(metrics.StageSelect, time.Since(started))

	entry := b.log.WithFields(logrus.Fields{
		"requested": final.Requested,
		"selected":  len(final.Lineups),
		"pool_size": len(candidates),
	})
	if final.Partial() {
		entry.Warn("Fewer diverse lineups than requested")
	} else {
		entry.Info("Final lineups selected")
	}
	return final
}
