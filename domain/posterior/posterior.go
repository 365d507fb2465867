// Package posterior holds the output of a sampling run: the joint
// parameter draws, read-only once produced, plus the sampler-health
// diagnostics attached to them.
package posterior

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"radonlab/internal/errors"
)

// Result is a posterior sample set. Draws are stored per chain and
// are never mutated after construction; consumers only summarize.
type Result struct {
	names  []string
	index  map[string]int
	chains [][][]float64 // chain -> draw -> flat parameter vector

	Diagnostics Diagnostics
}

// New validates dimensions and wraps the draws. Every chain must hold
// the same number of draws and every draw must match the parameter
// names.
func New(names []string, chains [][][]float64, diag Diagnostics) (*Result, error) {
	if len(chains) == 0 {
		return nil, errors.SamplingError("no chains produced", nil)
	}
	draws := len(chains[0])
	for c, ch := range chains {
		if len(ch) != draws {
			return nil, errors.SamplingError(
				fmt.Sprintf("chain %d holds %d draws, expected %d", c, len(ch), draws), nil)
		}
		for d, theta := range ch {
			if len(theta) != len(names) {
				return nil, errors.SamplingError(
					fmt.Sprintf("chain %d draw %d has %d parameters, expected %d",
						c, d, len(theta), len(names)), nil)
			}
		}
	}

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	return &Result{names: names, index: index, chains: chains, Diagnostics: diag}, nil
}

// Names returns the flat parameter names, one per slot
func (r *Result) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Chains returns the number of chains
func (r *Result) Chains() int { return len(r.chains) }

// DrawsPerChain returns the retained draw count of each chain
func (r *Result) DrawsPerChain() int { return len(r.chains[0]) }

// Draws returns all draws of one parameter merged across chains
func (r *Result) Draws(name string) ([]float64, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("parameter %q", name))
	}
	out := make([]float64, 0, len(r.chains)*len(r.chains[0]))
	for _, ch := range r.chains {
		for _, theta := range ch {
			out = append(out, theta[i])
		}
	}
	return out, nil
}

// ChainDraws returns the draws of one parameter for a single chain
func (r *Result) ChainDraws(name string, chain int) ([]float64, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("parameter %q", name))
	}
	if chain < 0 || chain >= len(r.chains) {
		return nil, errors.InvalidInput(fmt.Sprintf("chain %d out of range", chain))
	}
	out := make([]float64, len(r.chains[chain]))
	for d, theta := range r.chains[chain] {
		out[d] = theta[i]
	}
	return out, nil
}

// Mean returns the posterior mean of a parameter
func (r *Result) Mean(name string) (float64, error) {
	draws, err := r.Draws(name)
	if err != nil {
		return 0, err
	}
	return stats.Mean(draws)
}

// MeanVector returns the posterior mean of every flat slot, in name
// order. This is the point estimate used for predictive scoring.
func (r *Result) MeanVector() []float64 {
	out := make([]float64, len(r.names))
	total := 0
	for _, ch := range r.chains {
		for _, theta := range ch {
			for i, v := range theta {
				out[i] += v
			}
			total++
		}
	}
	for i := range out {
		out[i] /= float64(total)
	}
	return out
}

// Summary holds descriptive statistics for one parameter
type Summary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Q5     float64 `json:"q5"`
	Median float64 `json:"median"`
	Q95    float64 `json:"q95"`
	RHat   float64 `json:"rhat"`
	ESS    float64 `json:"ess"`
}

// Summarize computes descriptive statistics for one parameter
func (r *Result) Summarize(name string) (Summary, error) {
	draws, err := r.Draws(name)
	if err != nil {
		return Summary{}, err
	}
	mean, _ := stats.Mean(draws)
	sd, _ := stats.StandardDeviationSample(draws)
	q5, _ := stats.Percentile(draws, 5)
	median, _ := stats.Median(draws)
	q95, _ := stats.Percentile(draws, 95)
	return Summary{
		Name:   name,
		Mean:   mean,
		SD:     sd,
		Q5:     q5,
		Median: median,
		Q95:    q95,
		RHat:   r.Diagnostics.RHat[name],
		ESS:    r.Diagnostics.ESS[name],
	}, nil
}

// SummaryTable summarizes every parameter in name order
func (r *Result) SummaryTable() ([]Summary, error) {
	out := make([]Summary, 0, len(r.names))
	for _, name := range r.names {
		s, err := r.Summarize(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
