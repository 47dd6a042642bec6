package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/tennis-sim/internal/metrics"
	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/scoring"
	"github.com/stitts-dev/tennis-sim/internal/stream"
	"github.com/stitts-dev/tennis-sim/pkg/logger"
)

var (
	ErrEmptyRoster         = errors.New("roster is empty")
	ErrNoValidPairings     = errors.New("no valid pairings in roster")
	ErrDuplicateCompetitor = errors.New("competitor appears in more than one pairing")
	ErrInvalidSettings     = errors.New("invalid simulation settings")
)

// trials handed to a worker at a time
const trialChunk = 64

// Percentiles reported for every competitor
var Percentiles = [5]float64{0.10, 0.25, 0.50, 0.75, 0.90}

// Settings configures a slate simulation
type Settings struct {
	PreMatchVariance float64 `json:"pre_match_variance"`
	InMatchVariance  float64 `json:"in_match_variance"`
	NumSimulations   int     `json:"num_simulations"`
	Workers          int     `json:"workers"`
	Seed             uint64  `json:"seed"`
}

// Validate rejects settings the simulator cannot run with
func (s Settings) Validate() error {
	if s.NumSimulations < 1 {
		return fmt.Errorf("%w: num_simulations must be at least 1, got %d", ErrInvalidSettings, s.NumSimulations)
	}
	if s.PreMatchVariance < 0 || s.InMatchVariance < 0 {
		return fmt.Errorf("%w: variance intensities must be non-negative", ErrInvalidSettings)
	}
	return nil
}

// Progress reports completed trials across the slate
type Progress struct {
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	StartTime time.Time `json:"start_time"`
}

// SlateSimulator runs Monte Carlo trials for every pairing of a slate
type SlateSimulator struct {
	settings Settings
	metrics  *metrics.Collector
	progress chan<- Progress
	log      *logrus.Entry
}

// Option customizes a SlateSimulator
type Option func(*SlateSimulator)

// WithMetrics attaches a metrics collector
func WithMetrics(c *metrics.Collector) Option {
	return func(s *SlateSimulator) { s.metrics = c }
}

// WithProgress sends a progress update after each chunk of trials. Sends never block.
func WithProgress(ch chan<- Progress) Option {
	return func(s *SlateSimulator) { s.progress = ch }
}

// WithLogger replaces the default logger entry
func WithLogger(l *logrus.Entry) Option {
	return func(s *SlateSimulator) { s.log = l }
}

// NewSlateSimulator creates a simulator with the given settings
func NewSlateSimulator(settings Settings, opts ...Option) *SlateSimulator {
	s := &SlateSimulator{
		settings: settings,
		log:      logger.WithService("simulator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type trialJob struct {
	pairing    int
	start, end int
}

type pairingScores struct {
	scores [2][]float64
	aWon   []bool
}

// Run simulates every valid pairing of the roster. Pairings without exactly two distinct
// competitors are logged and skipped. An empty roster or a roster without any valid
// pairing is an error.
func (s *SlateSimulator) Run(ctx context.Context, roster []models.RosterEntry) (*models.SlateResult, error) {
	if err := s.settings.Validate(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	started := time.Now()
	pairings, skipped, err := s.buildPairings(roster)
	if err != nil {
		return nil, err
	}

	n := s.settings.NumSimulations
	results := make([]pairingScores, len(pairings))
	for i := range results {
		results[i] = pairingScores{
			scores: [2][]float64{make([]float64, n), make([]float64, n)},
			aWon:   make([]bool, n),
		}
	}

	numWorkers := runtime.NumCPU()
	if s.settings.Workers > 0 {
		numWorkers = s.settings.Workers
	}

	jobs := make(chan trialJob)
	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)
	total := n * len(pairings)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go s.worker(ctx, pairings, results, jobs, &completed, total, started, &wg)
	}

queue:
	for p := range pairings {
		for start := 0; start < n; start += trialChunk {
			job := trialJob{pairing: p, start: start, end: min(start+trialChunk, n)}
			select {
			case jobs <- job:
			case <-ctx.Done():
				break queue
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("slate simulation interrupted: %w", err)
	}

	s.metrics.AddTrials(total)
	result := s.aggregate(pairings, results, skipped)

	elapsed := time.Since(started)
	s.metrics.ObserveStage(metrics.StageSimulate, elapsed)
	s.log.WithFields(logrus.Fields{
		"pairings": len(pairings),
		"skipped":  len(skipped),
		"trials":   n,
		"workers":  numWorkers,
		"duration": elapsed.String(),
	}).Info("Slate simulation completed")

	return result, nil
}

func (s *SlateSimulator) buildPairings(roster []models.RosterEntry) ([]models.Pairing, []string, error) {
	ids, groups := models.GroupRoster(roster)

	var (
		pairings []models.Pairing
		skipped  []string
	)
	seen := make(map[string]string)
	for _, id := range ids {
		p, err := models.NewPairing(id, groups[id])
		if err != nil {
			s.log.WithField("pairing_id", id).WithError(err).Warn("Skipping malformed pairing")
			s.metrics.PairingSkipped()
			skipped = append(skipped, id)
			continue
		}
		for _, name := range []string{p.A.Name, p.B.Name} {
			key := strings.ToLower(name)
			if other, dup := seen[key]; dup {
				return nil, nil, fmt.Errorf("%w: %s in pairings %s and %s", ErrDuplicateCompetitor, name, other, id)
			}
			seen[key] = id
		}
		pairings = append(pairings, p)
	}

	if len(pairings) == 0 {
		return nil, skipped, ErrNoValidPairings
	}
	return pairings, skipped, nil
}

func (s *SlateSimulator) worker(ctx context.Context, pairings []models.Pairing, results []pairingScores, jobs <-chan trialJob, completed *atomic.Int64, total int, started time.Time, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		pairing := pairings[job.pairing]
		out := &results[job.pairing]
		for t := job.start; t < job.end; t++ {
			out.scores[models.SideA][t], out.scores[models.SideB][t], out.aWon[t] = s.trial(pairing, job.pairing, t)
		}

		done := completed.Add(int64(job.end - job.start))
		if s.progress != nil {
			select {
			case s.progress <- Progress{Completed: int(done), Total: total, StartTime: started}:
			default:
			}
		}
	}
}

// trial runs one independent match with its own random stream
func (s *SlateSimulator) trial(p models.Pairing, pairingIdx, trial int) (scoreA, scoreB float64, aWon bool) {
	rng := stream.New(s.settings.Seed, stream.Trials, pairingIdx, trial)

	a := Perturb(p.A, s.settings.PreMatchVariance, rng)
	b := Perturb(p.B, s.settings.PreMatchVariance, rng)
	outcome := SimulateMatch(a, b, s.settings.InMatchVariance, rng)

	scoreA, scoreB = scoring.DraftKings.ScoreOutcome(outcome)
	return scoreA, scoreB, outcome.Winner == models.SideA
}

func (s *SlateSimulator) aggregate(pairings []models.Pairing, results []pairingScores, skipped []string) *models.SlateResult {
	n := s.settings.NumSimulations
	result := &models.SlateResult{
		Trials:  n,
		Records: make(map[string]models.WinLoss, 2*len(pairings)),
		Skipped: skipped,
	}

	for i, p := range pairings {
		winsA := 0
		for _, won := range results[i].aWon {
			if won {
				winsA++
			}
		}
		wins := [2]int{winsA, n - winsA}

		for _, side := range []models.Side{models.SideA, models.SideB} {
			name := p.Competitor(side).Name
			scores := results[i].scores[side]

			summary := Summarize(scores)
			summary.PairingID = p.ID
			summary.Competitor = name
			summary.Wins = wins[side]
			summary.Losses = n - wins[side]

			result.Summaries = append(result.Summaries, summary)
			result.Distributions = append(result.Distributions, models.ScoreDistribution{
				PairingID:  p.ID,
				Competitor: name,
				Scores:     scores,
			})
			result.Records[name] = models.WinLoss{Wins: summary.Wins, Losses: summary.Losses}
		}
	}
	return result
}

// Summarize computes the mean and reported percentiles of a score sequence.
// The input is not reordered.
func Summarize(scores []float64) models.SlateSummary {
	if len(scores) == 0 {
		return models.SlateSummary{}
	}
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	var q [len(Percentiles)]float64
	for i, p := range Percentiles {
		q[i] = Percentile(sorted, p)
	}
	return models.SlateSummary{
		Mean: stat.Mean(scores, nil),
		P10:  q[0],
		P25:  q[1],
		P50:  q[2],
		P75:  q[3],
		P90:  q[4],
	}
}

// Percentile interpolates linearly between the closest ranks of an ascending slice:
// position p*(n-1), so p=0 is the minimum and p=1 the maximum.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
