package handlers

import (
	"time"

	"github.com/stitts-dev/tennis-sim/internal/models"
	"github.com/stitts-dev/tennis-sim/internal/optimizer"
	"github.com/stitts-dev/tennis-sim/internal/pipeline"
	"github.com/stitts-dev/tennis-sim/pkg/config"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus is returned by the health and readiness probes
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// SettingsOverrides replaces individual configuration values for one request
type SettingsOverrides struct {
	PreMatchVariance *float64 `json:"pre_match_variance,omitempty"`
	InMatchVariance  *float64 `json:"in_match_variance,omitempty"`
	NumSimulations   *int     `json:"num_simulations,omitempty"`
	Seed             *uint64  `json:"seed,omitempty"`
	BucketSize       *int     `json:"bucket_size,omitempty"`
	NumLineups       *int     `json:"num_lineups,omitempty"`
	PoolMultiple     *int     `json:"pool_multiple,omitempty"`
	SalaryCap        *int     `json:"salary_cap,omitempty"`
	RosterSize       *int     `json:"roster_size,omitempty"`
	MinUniquePlayers *int     `json:"min_unique_players,omitempty"`
}

// Apply returns a validated copy of base with the overrides set
func (o *SettingsOverrides) Apply(base config.Config) (config.Config, error) {
	if o != nil {
		setFloat(&base.PreMatchVariance, o.PreMatchVariance)
		setFloat(&base.InMatchVariance, o.InMatchVariance)
		setInt(&base.NumSimulations, o.NumSimulations)
		if o.Seed != nil {
			base.Seed = *o.Seed
		}
		setInt(&base.BucketSize, o.BucketSize)
		setInt(&base.NumLineups, o.NumLineups)
		setInt(&base.PoolMultiple, o.PoolMultiple)
		setInt(&base.SalaryCap, o.SalaryCap)
		setInt(&base.RosterSize, o.RosterSize)
		setInt(&base.MinUniquePlayers, o.MinUniquePlayers)
	}
	return base, base.Validate()
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// SimulateRequest runs the slate simulation for a roster
type SimulateRequest struct {
	Roster   []models.RosterEntry `json:"roster" binding:"required,min=1"`
	Settings *SettingsOverrides   `json:"settings,omitempty"`
}

// PipelineRequest runs simulation and lineup building
type PipelineRequest struct {
	Roster   []models.RosterEntry `json:"roster" binding:"required,min=1"`
	Salaries []models.SalaryEntry `json:"salaries" binding:"required,min=1"`
	Settings *SettingsOverrides   `json:"settings,omitempty"`
}

// SimulateResponse is the slate summary; distributions are included on request
type SimulateResponse struct {
	Cached        bool                       `json:"cached"`
	Trials        int                        `json:"trials"`
	Summaries     []models.SlateSummary      `json:"summaries"`
	Records       map[string]models.WinLoss  `json:"records"`
	Skipped       []string                   `json:"skipped_pairings,omitempty"`
	Distributions []models.ScoreDistribution `json:"distributions,omitempty"`
}

func newSimulateResponse(slate *models.SlateResult, cached, details bool) SimulateResponse {
	resp := SimulateResponse{
		Cached:    cached,
		Trials:    slate.Trials,
		Summaries: slate.Summaries,
		Records:   slate.Records,
		Skipped:   slate.Skipped,
	}
	if details {
		resp.Distributions = slate.Distributions
	}
	return resp
}

// PipelineResponse is the final lineup set with the slate summary
type PipelineResponse struct {
	RunID    string                `json:"run_id"`
	Seed     uint64                `json:"seed"`
	Cached   bool                  `json:"cached"`
	Slate    SimulateResponse      `json:"slate"`
	Final    models.FinalLineupSet `json:"final"`
	Partial  bool                  `json:"partial"`
	Summary  optimizer.PoolSummary `json:"summary"`
	PoolSize int                   `json:"pool_size"`
	Timings  pipeline.Timings      `json:"timings"`
	SetUsage [][]int               `json:"projection_set_trials,omitempty"`
}

func newPipelineResponse(res *pipeline.Result, cached, details bool) PipelineResponse {
	resp := PipelineResponse{
		RunID:    res.RunID,
		Seed:     res.Seed,
		Cached:   cached,
		Slate:    newSimulateResponse(res.Slate, cached, details),
		Final:    res.Final,
		Partial:  res.Final.Partial(),
		Summary:  res.Summary,
		PoolSize: len(res.Pool),
		Timings:  res.Timings,
	}
	if details {
		for _, set := range res.ProjectionSets {
			resp.SetUsage = append(resp.SetUsage, set.TrialIndices)
		}
	}
	return resp
}
