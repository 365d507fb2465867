package ports

import (
	"context"

	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
)

// SampleOptions fixes the shape of a sampling run
type SampleOptions struct {
	Chains int   // independent chains
	Warmup int   // adaptation draws discarded per chain
	Draws  int   // retained draws per chain
	Seed   int64 // base seed; per-chain seeds derive from it
}

// SamplerPort produces a posterior sample set for a fully specified
// model. Contract: the result holds exactly Draws draws across Chains
// independent chains; convergence problems are surfaced through the
// result's Diagnostics, never silently discarded. An error means the
// run itself could not execute.
type SamplerPort interface {
	Sample(ctx context.Context, spec *model.Spec, table *dataset.Table, opts SampleOptions) (*posterior.Result, error)
}
