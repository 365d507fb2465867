package sampler

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"radonlab/domain/model"
)

// Metropolis tuning: Robbins-Monro adaptation during warmup toward
// the scalar-update optimum acceptance rate.
const (
	targetAccept = 0.44
	initialStep  = 0.5
	adaptRate    = 1.0
)

// mhStep tracks the adaptive step size and post-warmup acceptance of
// one random-walk update.
type mhStep struct {
	size     float64
	accepted int
	proposed int
}

func newMHStep() *mhStep {
	return &mhStep{size: initialStep}
}

func (s *mhStep) rate() float64 {
	if s.proposed == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposed)
}

// mhLogScale proposes multiplicatively (random walk on log x) and
// accepts with the usual ratio times the x'/x Jacobian. During warmup
// the step size adapts toward targetAccept and acceptance is not
// recorded.
func (c *chain) mhLogScale(name string, logTarget func(float64) float64, adapting bool, iter int) {
	off, _ := c.spec.Offset(name)
	step := c.steps[name]

	cur := c.theta[off]
	prop := cur * math.Exp(step.size*c.rng.NormFloat64())

	logAlpha := logTarget(prop) - logTarget(cur) + math.Log(prop) - math.Log(cur)
	accProb := math.Exp(math.Min(0, logAlpha))

	if math.Log(c.rng.Float64()) < logAlpha {
		c.theta[off] = prop
		if !adapting {
			step.accepted++
		}
	}

	if adapting {
		gamma := adaptRate / math.Sqrt(float64(iter+1))
		step.size *= math.Exp(gamma * (accProb - targetAccept))
	} else {
		step.proposed++
	}
}

// scalePriorLogProb evaluates the log prior density of a positive
// scale parameter, up to the families the specs use. Half-Cauchy is
// Student's t with one degree of freedom folded at zero.
func scalePriorLogProb(p model.Prior, x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	switch p.Kind {
	case model.PriorHalfNormal:
		return math.Ln2 + distuv.Normal{Mu: 0, Sigma: p.Scale}.LogProb(x)
	case model.PriorHalfCauchy:
		return math.Ln2 + distuv.StudentsT{Mu: 0, Sigma: p.Scale, Nu: 1}.LogProb(x)
	default:
		return math.Inf(-1)
	}
}
