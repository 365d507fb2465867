package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"radonlab/domain/compare"
	"radonlab/domain/core"
	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/internal/errors"
	"radonlab/ports"
)

// CompareService runs the three-way pooling comparison on one table:
// fit every variant, score each with the shared RMSD routine, and
// derive the per-group shrinkage displacement between the unpooled
// and hierarchical fits.
type CompareService struct {
	fit *FitService
	log *slog.Logger
}

// NewCompareService creates a compare service
func NewCompareService(fit *FitService, log *slog.Logger) *CompareService {
	if log == nil {
		log = slog.Default()
	}
	return &CompareService{fit: fit, log: log}
}

// Compare fits all variants sequentially and assembles the report.
func (s *CompareService) Compare(ctx context.Context, table *dataset.Table, opts ports.SampleOptions) (*compare.Report, error) {
	if table == nil {
		return nil, errors.InvalidInput("compare requires a table")
	}

	report := &compare.Report{
		CreatedAt:    core.Now(),
		DatasetHash:  table.Hash(),
		Observations: table.Len(),
		Groups:       table.Groups(),
		Seed:         opts.Seed,
	}

	fits := make(map[model.Variant]*FitResult, 3)
	for _, variant := range model.Variants() {
		fr, err := s.fit.Fit(ctx, variant, table, opts)
		if err != nil {
			return nil, err
		}
		fits[variant] = fr

		summaries, err := fr.Posterior.SummaryTable()
		if err != nil {
			return nil, errors.Wrapf(err, "summarizing %s fit", variant)
		}
		worstName, worstRHat := fr.Posterior.Diagnostics.WorstRHat()

		report.Fits = append(report.Fits, compare.FitRecord{
			Variant:     variant,
			RunID:       fr.RunID,
			Fingerprint: fr.Fingerprint,
			Elapsed:     fr.Elapsed,
			Healthy:     fr.Posterior.Diagnostics.Healthy(),
			Warnings:    fr.Posterior.Diagnostics.Warnings,
			WorstRHat:   worstRHat,
			WorstName:   worstName,
			Summaries:   summaries,
		})
		report.Scores = append(report.Scores, compare.Score{
			Variant: variant,
			RMSD:    RMSD(fr.Spec, fr.Posterior, table),
		})
	}

	shrinkage, muA, muB, err := s.shrinkage(fits[model.VariantUnpooled], fits[model.VariantHierarchical], table)
	if err != nil {
		return nil, err
	}
	report.Shrinkage = shrinkage
	report.HyperMeanIntercept = muA
	report.HyperMeanSlope = muB

	return report, nil
}

// shrinkage computes, for every group, how far the posterior-mean
// (intercept, slope) pair moved between the unpooled and hierarchical
// fits. Sparse groups move far; well-observed groups barely move.
func (s *CompareService) shrinkage(unpooled, hier *FitResult, table *dataset.Table) ([]compare.GroupShrinkage, float64, float64, error) {
	muA, err := hier.Posterior.Mean("mu_a")
	if err != nil {
		return nil, 0, 0, err
	}
	muB, err := hier.Posterior.Mean("mu_b")
	if err != nil {
		return nil, 0, 0, err
	}

	idx := table.Index()
	out := make([]compare.GroupShrinkage, 0, idx.Len())
	for g := 0; g < idx.Len(); g++ {
		ua, err := unpooled.Posterior.Mean(fmt.Sprintf("a[%d]", g))
		if err != nil {
			return nil, 0, 0, err
		}
		ub, err := unpooled.Posterior.Mean(fmt.Sprintf("b[%d]", g))
		if err != nil {
			return nil, 0, 0, err
		}
		ha, err := hier.Posterior.Mean(fmt.Sprintf("a[%d]", g))
		if err != nil {
			return nil, 0, 0, err
		}
		hb, err := hier.Posterior.Mean(fmt.Sprintf("b[%d]", g))
		if err != nil {
			return nil, 0, 0, err
		}

		da := ha - ua
		db := hb - ub
		out = append(out, compare.GroupShrinkage{
			Group:             idx.Label(g),
			Count:             idx.Count(g),
			UnpooledIntercept: ua,
			UnpooledSlope:     ub,
			HierIntercept:     ha,
			HierSlope:         hb,
			DeltaIntercept:    da,
			DeltaSlope:        db,
			Displacement:      math.Hypot(da, db),
		})
	}
	return out, muA, muB, nil
}
