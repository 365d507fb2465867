package sampler

import (
	"context"
	"math"
	"math/rand"

	"radonlab/domain/model"
)

// chain holds the mutable state of one MCMC chain: the flat parameter
// vector plus the adaptive step sizes of its Metropolis updates.
type chain struct {
	spec  *model.Spec
	d     *design
	rng   *rand.Rand
	theta []float64
	steps map[string]*mhStep
}

func newChain(spec *model.Spec, d *design, rng *rand.Rand) *chain {
	c := &chain{
		spec:  spec,
		d:     d,
		rng:   rng,
		theta: make([]float64, spec.Size()),
		steps: make(map[string]*mhStep),
	}
	c.init()
	return c
}

// init draws overdispersed starting values so chains begin in
// different regions; R-hat is meaningless otherwise.
func (c *chain) init() {
	for _, n := range c.spec.Nodes() {
		off, _ := c.spec.Offset(n.Name)
		count := c.spec.ParamCount(n.Name)
		for i := 0; i < count; i++ {
			switch n.Prior.Kind {
			case model.PriorHalfNormal, model.PriorHalfCauchy:
				base := 1.0
				if n.Name == "sigma" {
					base = c.d.ySD
				}
				c.theta[off+i] = base * math.Exp(0.3*c.rng.NormFloat64())
				c.steps[n.Name] = newMHStep()
			default:
				center := 0.0
				if n.Name == "a" || n.Name == "mu_a" {
					center = c.d.yMean
				}
				c.theta[off+i] = center + 0.5*c.d.ySD*c.rng.NormFloat64()
			}
		}
	}
}

// run performs warmup+draws sweeps and returns the retained draws and
// the post-warmup Metropolis acceptance rates.
func (c *chain) run(ctx context.Context, warmup, draws int) ([][]float64, map[string]float64, error) {
	out := make([][]float64, 0, draws)
	total := warmup + draws

	for iter := 0; iter < total; iter++ {
		if iter%128 == 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}
		}
		c.sweep(iter < warmup, iter)
		if iter >= warmup {
			out = append(out, append([]float64(nil), c.theta...))
		}
	}

	accept := make(map[string]float64, len(c.steps))
	for name, s := range c.steps {
		accept[name] = s.rate()
	}
	return out, accept, nil
}

// sweep is one full scan over the parameters
func (c *chain) sweep(adapting bool, iter int) {
	c.updateIntercepts()
	c.updateSlopes()
	c.updateHypers(adapting, iter)
	c.updateNoise(adapting, iter)
}

// coefPrior resolves the prior mean and spread applying to a
// coefficient node: literal for fixed priors, read from the current
// state for partially pooled ones.
func (c *chain) coefPrior(n model.Node) (mu0, tau0 float64) {
	if n.Prior.Kind == model.PriorGroupNormal {
		muOff, _ := c.spec.Offset(n.Prior.MeanNode)
		tauOff, _ := c.spec.Offset(n.Prior.ScaleNode)
		return c.theta[muOff], c.theta[tauOff]
	}
	return n.Prior.Mu, n.Prior.Scale
}

// updateIntercepts draws the intercept(s) from their exact Gaussian
// conditional.
func (c *chain) updateIntercepts() {
	n, _ := c.spec.Node("a")
	sigma := c.spec.NoiseAt(c.theta)
	likPrec := 1 / (sigma * sigma)
	mu0, tau0 := c.coefPrior(n)
	priorPrec := 1 / (tau0 * tau0)
	off, _ := c.spec.Offset("a")

	if n.Card == model.Scalar {
		sum := 0.0
		for i := 0; i < c.d.n; i++ {
			sum += c.d.y[i] - c.spec.SlopeAt(c.theta, c.d.group[i])*c.d.x[i]
		}
		c.theta[off] = c.drawConjugate(sum, float64(c.d.n), likPrec, mu0, priorPrec)
		return
	}

	for g := 0; g < c.d.groups; g++ {
		b := c.spec.SlopeAt(c.theta, g)
		sum := 0.0
		for _, i := range c.d.rowsByGroup[g] {
			sum += c.d.y[i] - b*c.d.x[i]
		}
		c.theta[off+g] = c.drawConjugate(sum, float64(len(c.d.rowsByGroup[g])), likPrec, mu0, priorPrec)
	}
}

// updateSlopes draws the slope(s) from their exact Gaussian
// conditional.
func (c *chain) updateSlopes() {
	n, _ := c.spec.Node("b")
	sigma := c.spec.NoiseAt(c.theta)
	likPrec := 1 / (sigma * sigma)
	mu0, tau0 := c.coefPrior(n)
	priorPrec := 1 / (tau0 * tau0)
	off, _ := c.spec.Offset("b")

	if n.Card == model.Scalar {
		sum, weight := 0.0, 0.0
		for i := 0; i < c.d.n; i++ {
			a := c.spec.InterceptAt(c.theta, c.d.group[i])
			sum += c.d.x[i] * (c.d.y[i] - a)
			weight += c.d.x[i] * c.d.x[i]
		}
		c.theta[off] = c.drawConjugate(sum, weight, likPrec, mu0, priorPrec)
		return
	}

	for g := 0; g < c.d.groups; g++ {
		a := c.spec.InterceptAt(c.theta, g)
		sum := 0.0
		for _, i := range c.d.rowsByGroup[g] {
			sum += c.d.x[i] * (c.d.y[i] - a)
		}
		c.theta[off+g] = c.drawConjugate(sum, c.d.sumXX[g], likPrec, mu0, priorPrec)
	}
}

// drawConjugate samples from the Gaussian conditional
// N(post mean, 1/post precision) given a weighted residual sum,
// the likelihood weight, and the prior.
func (c *chain) drawConjugate(sum, weight, likPrec, mu0, priorPrec float64) float64 {
	prec := weight*likPrec + priorPrec
	mean := (sum*likPrec + mu0*priorPrec) / prec
	return mean + c.rng.NormFloat64()/math.Sqrt(prec)
}

// updateHypers updates the shared mean and spread of every partially
// pooled coefficient family. The mean is conjugate; the spread takes
// a log-scale Metropolis step.
func (c *chain) updateHypers(adapting bool, iter int) {
	for _, n := range c.spec.Nodes() {
		if n.Card != model.PerGroup || n.Prior.Kind != model.PriorGroupNormal {
			continue
		}
		c.updateHyperMean(n)
		c.updateHyperScale(n, adapting, iter)
	}
}

func (c *chain) updateHyperMean(coef model.Node) {
	meanNode, _ := c.spec.Node(coef.Prior.MeanNode)
	meanOff, _ := c.spec.Offset(coef.Prior.MeanNode)
	tauOff, _ := c.spec.Offset(coef.Prior.ScaleNode)
	coefOff, _ := c.spec.Offset(coef.Name)

	tau := c.theta[tauOff]
	likPrec := 1 / (tau * tau)
	sum := 0.0
	for g := 0; g < c.d.groups; g++ {
		sum += c.theta[coefOff+g]
	}

	priorPrec := 1 / (meanNode.Prior.Scale * meanNode.Prior.Scale)
	c.theta[meanOff] = c.drawConjugate(sum, float64(c.d.groups), likPrec, meanNode.Prior.Mu, priorPrec)
}

func (c *chain) updateHyperScale(coef model.Node, adapting bool, iter int) {
	scaleNode, _ := c.spec.Node(coef.Prior.ScaleNode)
	meanOff, _ := c.spec.Offset(coef.Prior.MeanNode)
	coefOff, _ := c.spec.Offset(coef.Name)

	mu := c.theta[meanOff]
	ss := 0.0
	for g := 0; g < c.d.groups; g++ {
		diff := c.theta[coefOff+g] - mu
		ss += diff * diff
	}
	count := float64(c.d.groups)

	target := func(x float64) float64 {
		if x <= 0 {
			return math.Inf(-1)
		}
		return -count*math.Log(x) - ss/(2*x*x) + scalePriorLogProb(scaleNode.Prior, x)
	}
	c.mhLogScale(coef.Prior.ScaleNode, target, adapting, iter)
}

// updateNoise takes a log-scale Metropolis step on the shared
// residual scale.
func (c *chain) updateNoise(adapting bool, iter int) {
	noiseNode, _ := c.spec.Node("sigma")

	sse := 0.0
	for i := 0; i < c.d.n; i++ {
		g := c.d.group[i]
		r := c.d.y[i] - c.spec.InterceptAt(c.theta, g) - c.spec.SlopeAt(c.theta, g)*c.d.x[i]
		sse += r * r
	}
	count := float64(c.d.n)

	target := func(x float64) float64 {
		if x <= 0 {
			return math.Inf(-1)
		}
		return -count*math.Log(x) - sse/(2*x*x) + scalePriorLogProb(noiseNode.Prior, x)
	}
	c.mhLogScale("sigma", target, adapting, iter)
}
