// Package app wires the comparison workflow: build a spec, invoke the
// sampler, score and compare the fitted variants.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"radonlab/domain/core"
	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
	"radonlab/internal/errors"
	"radonlab/ports"
)

// FitService fits one model variant and stamps the run with an
// auditable identity.
type FitService struct {
	sampler ports.SamplerPort
	log     *slog.Logger
}

// NewFitService creates a fit service
func NewFitService(sampler ports.SamplerPort, log *slog.Logger) *FitService {
	if log == nil {
		log = slog.Default()
	}
	return &FitService{sampler: sampler, log: log}
}

// FitResult is one fitted variant with its run identity
type FitResult struct {
	RunID       core.RunID
	Variant     model.Variant
	Spec        *model.Spec
	Posterior   *posterior.Result
	Fingerprint core.Fingerprint
	Elapsed     time.Duration
}

// Fit builds the spec for the variant, runs the sampler, and returns
// the posterior with its identity. Sampler health is carried on the
// posterior's diagnostics; only execution failures are errors.
func (s *FitService) Fit(ctx context.Context, variant model.Variant, table *dataset.Table, opts ports.SampleOptions) (*FitResult, error) {
	if table == nil {
		return nil, errors.InvalidInput("fit requires a table")
	}

	spec, err := model.ForVariant(variant, table.Groups())
	if err != nil {
		return nil, errors.Wrapf(err, "building %s spec", variant)
	}

	start := time.Now()
	post, err := s.sampler.Sample(ctx, spec, table, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "sampling %s model", variant)
	}
	elapsed := time.Since(start)

	fingerprint := core.NewFingerprint(opts.Seed, table.Hash(), map[string]string{
		"variant": string(variant),
		"chains":  fmt.Sprintf("%d", post.Diagnostics.Chains),
		"warmup":  fmt.Sprintf("%d", post.Diagnostics.Warmup),
		"draws":   fmt.Sprintf("%d", post.Diagnostics.Draws),
	})

	result := &FitResult{
		RunID:       core.RunID(core.NewID()),
		Variant:     variant,
		Spec:        spec,
		Posterior:   post,
		Fingerprint: fingerprint,
		Elapsed:     elapsed,
	}

	s.log.Info("fit complete",
		"variant", string(variant),
		"run_id", result.RunID.String(),
		"healthy", post.Diagnostics.Healthy(),
		"elapsed", elapsed.Round(time.Millisecond))
	return result, nil
}
