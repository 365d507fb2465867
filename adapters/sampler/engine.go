// Package sampler implements the inference engine behind the
// SamplerPort: a Metropolis-within-Gibbs sampler for the pooled,
// unpooled, and hierarchical regression specs. Coefficients and
// group-mean hyperparameters use exact conjugate Gaussian conditional
// draws; scale parameters use adaptive random-walk Metropolis on the
// log scale.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
	"radonlab/internal/errors"
	"radonlab/ports"
)

// Default sampling shape, applied when options are zero-valued.
const (
	DefaultChains = 4
	DefaultWarmup = 1000
	DefaultDraws  = 1000
)

// chainSeedStride separates per-chain seed streams
const chainSeedStride = 1_000_003

// Engine runs independent chains in parallel and attaches convergence
// diagnostics to the result.
type Engine struct {
	log *slog.Logger
}

// New creates an engine logging through the given logger
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

var _ ports.SamplerPort = (*Engine)(nil)

// Sample draws opts.Draws posterior samples per chain for the spec.
// Convergence problems are reported through the result's diagnostics;
// an error means the run itself could not execute.
func (e *Engine) Sample(ctx context.Context, spec *model.Spec, table *dataset.Table, opts ports.SampleOptions) (*posterior.Result, error) {
	if spec == nil || table == nil {
		return nil, errors.InvalidInput("sampler requires a spec and a table")
	}
	if spec.Groups() != table.Groups() {
		return nil, errors.InvalidInput(fmt.Sprintf(
			"spec built for %d groups but table holds %d", spec.Groups(), table.Groups()))
	}
	opts = withDefaults(opts)

	d := newDesign(table)
	names := spec.ParamNames()

	e.log.Info("sampling",
		"variant", string(spec.Variant()),
		"observations", table.Len(),
		"groups", table.Groups(),
		"chains", opts.Chains,
		"warmup", opts.Warmup,
		"draws", opts.Draws,
		"seed", opts.Seed)

	chainDraws := make([][][]float64, opts.Chains)
	chainAccept := make([]map[string]float64, opts.Chains)

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < opts.Chains; c++ {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(opts.Seed + int64(c)*chainSeedStride))
			ch := newChain(spec, d, rng)
			draws, accept, err := ch.run(gctx, opts.Warmup, opts.Draws)
			if err != nil {
				return errors.Wrapf(err, "chain %d", c)
			}
			chainDraws[c] = draws
			chainAccept[c] = accept
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.SamplingError("sampling run failed", err)
	}

	diag := computeDiagnostics(names, chainDraws, chainAccept, opts)
	result, err := posterior.New(names, chainDraws, diag)
	if err != nil {
		return nil, err
	}

	if !diag.Healthy() {
		name, worst := diag.WorstRHat()
		e.log.Warn("sampler diagnostics flagged",
			"variant", string(spec.Variant()),
			"worst_rhat_param", name,
			"worst_rhat", worst,
			"warnings", len(diag.Warnings))
	}
	return result, nil
}

func withDefaults(opts ports.SampleOptions) ports.SampleOptions {
	if opts.Chains <= 0 {
		opts.Chains = DefaultChains
	}
	if opts.Warmup <= 0 {
		opts.Warmup = DefaultWarmup
	}
	if opts.Draws <= 0 {
		opts.Draws = DefaultDraws
	}
	return opts
}
