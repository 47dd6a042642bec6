package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/optimizer"
	"github.com/stitts-dev/tennis-sim/internal/simulator"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

// Settings bundles the per-stage settings of one run
type Settings struct {
	Simulation simulator.Settings `json:"simulation"`
	Optimizer  optimizer.Settings `json:"optimizer"`
}

// Timings records wall-clock time per stage
type Timings struct {
	Simulate time.Duration `json:"simulate"`
	Optimize time.Duration `json:"optimize"`
	Total    time.Duration `json:"total"`
}

// Result is everything one run produces
type Result struct {
	RunID          string                 `json:"run_id"`
	Seed           uint64                 `json:"seed"`
	Slate          *models.SlateResult    `json:"slate"`
	ProjectionSets []models.ProjectionSet `json:"projection_sets"`
	Pool           []models.Lineup        `json:"pool"`
	Final          models.FinalLineupSet  `json:"final"`
	Summary        optimizer.PoolSummary  `json:"summary"`
	Timings        Timings                `json:"timings"`
}

// Runner chains the slate simulator and the lineup builder
type Runner struct {
	settings Settings
	metrics  *metrics.Collector
	progress chan<- simulator.Progress
	solver   optimizer.Solver
}

// Option customizes a Runner
type Option func(*Runner)

// WithMetrics attaches a metrics collector to every stage
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = c }
}

// WithProgress forwards simulation progress updates
func WithProgress(ch chan<- simulator.Progress) Option {
	return func(r *Runner) { r.progress = ch }
}

// WithSolver overrides the lineup solver
func WithSolver(s optimizer.Solver) Option {
	return func(r *Runner) { r.solver = s }
}

func NewRunner(settings Settings, opts ...Option) *Runner {
	r := &Runner{settings: settings}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Simulate runs only the slate simulation
func (r *Runner) Simulate(ctx context.Context, roster []models.RosterEntry) (*models.SlateResult, error) {
	return r.simulator(logger.WithRunContext(uuid.NewString(), r.settings.Simulation.Seed)).Run(ctx, roster)
}

// Optimize builds lineups from previously simulated distributions
func (r *Runner) Optimize(ctx context.Context, distributions []models.ScoreDistribution, salaries models.SalaryPool) (*optimizer.Result, error) {
	return r.builder(logger.WithRunContext(uuid.NewString(), r.settings.Optimizer.Seed)).Run(ctx, distributions, salaries)
}

// Run simulates the slate and builds the final lineup set from its distributions.
// Only structural failures are returned; skipped pairings and infeasible
// projection sets are logged and reflected in the result.
func (r *Runner) Run(ctx context.Context, roster []models.RosterEntry, salaries models.SalaryPool) (*Result, error) {
	if err := r.settings.Optimizer.Validate(); err != nil {
		return nil, err
	}
	if trials := r.settings.Simulation.NumSimulations; r.settings.Optimizer.BucketSize > trials {
		return nil, fmt.Errorf("%w: bucket size %d exceeds %d trials", optimizer.ErrInvalidSettings, r.settings.Optimizer.BucketSize, trials)
	}

	runID := uuid.NewString()
	log := logger.WithRunContext(runID, r.settings.Simulation.Seed)
	started := time.Now()

	slate, err := r.simulator(log).Run(ctx, roster)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	simulated := time.Now()

	built, err := r.builder(log).Run(ctx, slate.Distributions, salaries)
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	finished := time.Now()
	result := &Result{
		RunID:          runID,
		Seed:           r.settings.Simulation.Seed,
		Slate:          slate,
		ProjectionSets: built.ProjectionSets,
		Pool:           built.Pool,
		Final:          built.Final,
		Summary:        built.Summary,
		Timings: Timings{
			Simulate: simulated.Sub(started),
			Optimize: finished.Sub(simulated),
			Total:    finished.Sub(started),
		},
	}
	r.metrics.ObserveStage(metrics.StagePipeline, result.Timings.Total)

	log.WithFields(logrus.Fields{
		"pairings":  len(slate.Summaries) / 2,
		"skipped":   len(slate.Skipped),
		"pool_size": len(built.Pool),
		"lineups":   len(built.Final.Lineups),
		"requested": built.Final.Requested,
		"duration":  result.Timings.Total,
	}).Info("Pipeline run completed")

	return result, nil
}

func (r *Runner) simulator(log *logrus.Entry) *simulator.SlateSimulator {
	opts := []simulator.Option{
		simulator.WithMetrics(r.metrics),
		simulator.WithLogger(log.WithField("service", "simulator")),
	}
	if r.progress != nil {
		opts = append(opts, simulator.WithProgress(r.progress))
	}
	return simulator.NewSlateSimulator(r.settings.Simulation, opts...)
}

func (r *Runner) builder(log *logrus.Entry) *optimizer.Builder {
	opts := []optimizer.Option{
		optimizer.WithMetrics(r.metrics),
		optimizer.WithLogger(log.WithField("service", "optimizer")),
	}
	if r.solver != nil {
		opts = append(opts, optimizer.WithSolver(r.solver))
	}
	return optimizer.NewBuilder(r.settings.Optimizer, opts...)
}
