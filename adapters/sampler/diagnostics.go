package sampler

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"radonlab/domain/posterior"
	"radonlab/ports"
)

// computeDiagnostics derives split-Rhat and effective sample size per
// parameter and folds in the Metropolis acceptance rates. Anything
// suspicious becomes a warning on the diagnostics, not an error.
func computeDiagnostics(names []string, chains [][][]float64, accept []map[string]float64, opts ports.SampleOptions) posterior.Diagnostics {
	diag := posterior.Diagnostics{
		Chains:     opts.Chains,
		Draws:      opts.Draws,
		Warmup:     opts.Warmup,
		Seed:       opts.Seed,
		RHat:       make(map[string]float64, len(names)),
		ESS:        make(map[string]float64, len(names)),
		Acceptance: make(map[string][]float64),
	}

	for i, name := range names {
		series := make([][]float64, len(chains))
		for c, ch := range chains {
			s := make([]float64, len(ch))
			for d, theta := range ch {
				s[d] = theta[i]
			}
			series[c] = s
		}
		r := splitRHat(series)
		e := effectiveSampleSize(series)
		diag.RHat[name] = r
		diag.ESS[name] = e

		if r > posterior.RHatThreshold {
			diag.Flag("parameter %s did not converge: split-Rhat %.3f", name, r)
		}
		if e < posterior.MinESS {
			diag.Flag("parameter %s mixes poorly: ESS %.0f", name, e)
		}
	}

	if len(accept) > 0 {
		for name := range accept[0] {
			rates := make([]float64, len(accept))
			for c, m := range accept {
				rates[c] = m[name]
			}
			diag.Acceptance[name] = rates
			for c, rate := range rates {
				if rate < 0.1 || rate > 0.9 {
					diag.Flag("chain %d acceptance for %s out of range: %.2f", c, name, rate)
				}
			}
		}
	}

	return diag
}

// splitRHat computes the Gelman-Rubin statistic on half-chains. A
// constant parameter yields exactly 1.
func splitRHat(chains [][]float64) float64 {
	seqs := splitChains(chains)
	m := len(seqs)
	if m < 2 {
		return math.NaN()
	}
	n := len(seqs[0])
	if n < 2 {
		return math.NaN()
	}

	means := make([]float64, m)
	vars := make([]float64, m)
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
		vars[i] = stat.Variance(s, nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	if w == 0 {
		return 1
	}

	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// effectiveSampleSize follows the multi-chain autocorrelation
// estimator with Geyer's initial-positive-sequence truncation.
func effectiveSampleSize(chains [][]float64) float64 {
	seqs := splitChains(chains)
	m := len(seqs)
	if m == 0 {
		return 0
	}
	n := len(seqs[0])
	if n < 4 {
		return float64(m * n)
	}

	means := make([]float64, m)
	vars := make([]float64, m)
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
		vars[i] = stat.Variance(s, nil)
	}
	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	if varPlus == 0 {
		return float64(m * n)
	}

	// Mean autocovariance across chains at each lag.
	rho := make([]float64, n)
	for t := 1; t < n; t++ {
		acov := 0.0
		for i, s := range seqs {
			sum := 0.0
			for k := 0; k < n-t; k++ {
				sum += (s[k] - means[i]) * (s[k+t] - means[i])
			}
			acov += sum / float64(n)
		}
		acov /= float64(m)
		rho[t] = 1 - (w-acov)/varPlus
	}

	// Sum paired autocorrelations while the pair sums stay positive.
	sum := 0.0
	for t := 1; t+1 < n; t += 2 {
		pair := rho[t] + rho[t+1]
		if pair < 0 {
			break
		}
		sum += pair
	}

	ess := float64(m*n) / (1 + 2*sum)
	if ess > float64(m*n) {
		ess = float64(m * n)
	}
	return ess
}

// splitChains halves each chain so slow drift within a chain shows up
// as between-sequence variance.
func splitChains(chains [][]float64) [][]float64 {
	var seqs [][]float64
	for _, ch := range chains {
		h := len(ch) / 2
		if h == 0 {
			continue
		}
		seqs = append(seqs, ch[:h], ch[h:2*h])
	}
	return seqs
}
