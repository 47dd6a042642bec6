package models

import (
	"fmt"
	"math"
	"strings"
)

// Metric identifies one ability metric of a competitor profile
type Metric int

const (
	FirstServePct Metric = iota
	FirstServeWonPct
	SecondServeWonPct
	FirstServeReturnWonPct
	SecondServeReturnWonPct
	AcesPerMatch
	DoubleFaultsPerMatch

	metricCount
)

// MetricKind describes the domain a metric value lives in
type MetricKind int

const (
	// Proportion metrics are bounded to [0,1]
	Proportion MetricKind = iota
	// Rate metrics are non-negative counts per match
	Rate
)

// Direction tells whether a larger metric value is good or bad for the competitor
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// MetricInfo describes how a metric is named, bounded and perturbed
type MetricInfo struct {
	Name             string
	Kind             MetricKind
	Direction        Direction
	VarianceEligible bool
}

var metricInfo = [metricCount]MetricInfo{
	FirstServePct:           {Name: "FirstServePercentage", Kind: Proportion, Direction: HigherIsBetter, VarianceEligible: true},
	FirstServeWonPct:        {Name: "FirstServeWonPercentage", Kind: Proportion, Direction: HigherIsBetter, VarianceEligible: true},
	SecondServeWonPct:       {Name: "SecondServeWonPercentage", Kind: Proportion, Direction: HigherIsBetter, VarianceEligible: true},
	FirstServeReturnWonPct:  {Name: "FirstServeReturnPointsWonPercentage", Kind: Proportion, Direction: HigherIsBetter, VarianceEligible: true},
	SecondServeReturnWonPct: {Name: "SecondServeReturnPointsWonPercentage", Kind: Proportion, Direction: HigherIsBetter, VarianceEligible: true},
	AcesPerMatch:            {Name: "AcesPerMatch", Kind: Rate, Direction: HigherIsBetter, VarianceEligible: true},
	DoubleFaultsPerMatch:    {Name: "DoubleFaultsPerMatch", Kind: Rate, Direction: LowerIsBetter, VarianceEligible: true},
}

// AllMetrics returns every known metric in declaration order
func AllMetrics() []Metric {
	out := make([]Metric, 0, metricCount)
	for m := Metric(0); m < metricCount; m++ {
		out = append(out, m)
	}
	return out
}

// Info returns the static description of the metric
func (m Metric) Info() MetricInfo {
	if m < 0 || m >= metricCount {
		return MetricInfo{Name: fmt.Sprintf("Metric(%d)", int(m))}
	}
	return metricInfo[m]
}

func (m Metric) String() string {
	return m.Info().Name
}

// Clamp bounds v to the metric's domain
func (m Metric) Clamp(v float64) float64 {
	switch m.Info().Kind {
	case Proportion:
		return math.Min(math.Max(v, 0), 1)
	default:
		return math.Max(v, 0)
	}
}

// ParseMetric resolves a metric by its column name, case-insensitively
func ParseMetric(name string) (Metric, bool) {
	for m := Metric(0); m < metricCount; m++ {
		if strings.EqualFold(metricInfo[m].Name, name) {
			return m, true
		}
	}
	return 0, false
}

// Metrics holds the ability values used by the match model
type Metrics struct {
	FirstServePct           float64 `json:"first_serve_pct"`
	FirstServeWonPct        float64 `json:"first_serve_won_pct"`
	SecondServeWonPct       float64 `json:"second_serve_won_pct"`
	FirstServeReturnWonPct  float64 `json:"first_serve_return_won_pct"`
	SecondServeReturnWonPct float64 `json:"second_serve_return_won_pct"`
	AcesPerMatch            float64 `json:"aces_per_match"`
	DoubleFaultsPerMatch    float64 `json:"double_faults_per_match"`
}

func (ms *Metrics) ref(m Metric) *float64 {
	switch m {
	case FirstServePct:
		return &ms.FirstServePct
	case FirstServeWonPct:
		return &ms.FirstServeWonPct
	case SecondServeWonPct:
		return &ms.SecondServeWonPct
	case FirstServeReturnWonPct:
		return &ms.FirstServeReturnWonPct
	case SecondServeReturnWonPct:
		return &ms.SecondServeReturnWonPct
	case AcesPerMatch:
		return &ms.AcesPerMatch
	case DoubleFaultsPerMatch:
		return &ms.DoubleFaultsPerMatch
	}
	return nil
}

// Get returns the value of metric m, or 0 for an unknown metric
func (ms Metrics) Get(m Metric) float64 {
	if p := ms.ref(m); p != nil {
		return *p
	}
	return 0
}

// With returns a copy of ms with metric m set to v
func (ms Metrics) With(m Metric, v float64) Metrics {
	if p := ms.ref(m); p != nil {
		*p = v
	}
	return ms
}

// Validate checks every metric is finite and inside its domain
func (ms Metrics) Validate() error {
	for _, m := range AllMetrics() {
		v := ms.Get(m)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidProfile, m)
		}
		if m.Clamp(v) != v {
			return fmt.Errorf("%w: %s=%g out of range", ErrInvalidProfile, m, v)
		}
	}
	return nil
}

// CompetitorProfile is a competitor's identity and ability metrics.
// Profiles are passed by value; perturbation always yields a new profile.
type CompetitorProfile struct {
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
}

// NewCompetitorProfile validates and builds a profile
func NewCompetitorProfile(name string, metrics Metrics) (CompetitorProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CompetitorProfile{}, fmt.Errorf("%w: empty name", ErrInvalidProfile)
	}
	if err := metrics.Validate(); err != nil {
		return CompetitorProfile{}, fmt.Errorf("%s: %w", name, err)
	}
	return CompetitorProfile{Name: name, Metrics: metrics}, nil
}
