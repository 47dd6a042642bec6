package simulator

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stitts-dev/tennis-sim/internal/models"
)

// Perturb returns a copy of profile with zero-mean Gaussian noise added to every
// variance-eligible metric. The standard deviation is intensity*|value|. Direction does
// not flip the sign of the noise. Results are clamped to each metric's domain.
func Perturb(profile models.CompetitorProfile, intensity float64, rng *rand.Rand) models.CompetitorProfile {
	out := profile
	for _, m := range models.AllMetrics() {
		if !m.Info().VarianceEligible {
			continue
		}
		v := out.Metrics.Get(m)
		sigma := math.Max(intensity*math.Abs(v), 0)
		noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}.Rand()
		out.Metrics = out.Metrics.With(m, m.Clamp(v+noise))
	}
	return out
}
