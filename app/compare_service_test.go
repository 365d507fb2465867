package app

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radonlab/adapters/sampler"
	"radonlab/domain/compare"
	"radonlab/domain/model"
	"radonlab/internal/testkit"
	"radonlab/ports"
)

func compareOn(t *testing.T, cfg testkit.SyntheticConfig) *compare.Report {
	t.Helper()

	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	fitSvc := NewFitService(sampler.New(nil), nil)
	cmpSvc := NewCompareService(fitSvc, nil)

	report, err := cmpSvc.Compare(context.Background(), table, ports.SampleOptions{
		Chains: 2, Warmup: 600, Draws: 600, Seed: 20240817,
	})
	require.NoError(t, err)
	return report
}

func TestCompare_ScoresNonNegativeForAllVariants(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{4, 12, 30}
	report := compareOn(t, cfg)

	require.Len(t, report.Scores, 3)
	for _, s := range report.Scores {
		assert.GreaterOrEqual(t, s.RMSD, 0.0, "variant %s", s.Variant)
		// Noise floor: RMSD cannot beat the generating noise by much.
		assert.Less(t, s.RMSD, 3*cfg.NoiseSD, "variant %s", s.Variant)
	}

	for _, v := range model.Variants() {
		_, ok := report.ScoreFor(v)
		assert.True(t, ok, "missing score for %s", v)
	}
}

func TestCompare_ShrinkageStrongerForSmallGroups(t *testing.T) {
	// Three groups from one true parameter pair: the size-2 group's
	// hierarchical estimate must sit strictly closer to the shared
	// mean than its unpooled estimate.
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{2, 50, 50}
	report := compareOn(t, cfg)

	require.Len(t, report.Shrinkage, 3)
	small := report.Shrinkage[0]
	require.Equal(t, 2, small.Count)

	distUnpooled := math.Hypot(
		small.UnpooledIntercept-report.HyperMeanIntercept,
		small.UnpooledSlope-report.HyperMeanSlope)
	distHier := math.Hypot(
		small.HierIntercept-report.HyperMeanIntercept,
		small.HierSlope-report.HyperMeanSlope)

	assert.Less(t, distHier, distUnpooled,
		"partial pooling must pull the sparse group toward the shared mean")

	// The sparse group moves farther than the well-observed ones.
	for _, g := range report.Shrinkage[1:] {
		assert.Greater(t, small.Displacement, g.Displacement,
			"group %s (n=%d) should move less than the sparse group", g.Group, g.Count)
	}
}

func TestCompare_IllIdentifiedSlopeRegularized(t *testing.T) {
	// The first group only has basement measurements, so its unpooled
	// slope is prior-dominated; the hierarchical slope stays pinned
	// near the shared mean.
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{6, 40, 40}
	table, err := testkit.NewGenerator(cfg).GenerateConstantCovariate(0)
	require.NoError(t, err)

	fitSvc := NewFitService(sampler.New(nil), nil)
	opts := ports.SampleOptions{Chains: 2, Warmup: 600, Draws: 600, Seed: 7}

	unpooled, err := fitSvc.Fit(context.Background(), model.VariantUnpooled, table, opts)
	require.NoError(t, err)
	hier, err := fitSvc.Fit(context.Background(), model.VariantHierarchical, table, opts)
	require.NoError(t, err)

	unpooledSlope, err := unpooled.Posterior.Summarize("b[0]")
	require.NoError(t, err)
	hierSlope, err := hier.Posterior.Summarize("b[0]")
	require.NoError(t, err)
	muB, err := hier.Posterior.Mean("mu_b")
	require.NoError(t, err)

	assert.False(t, math.IsNaN(hierSlope.Mean))
	assert.Less(t, math.Abs(hierSlope.Mean-muB), 1.0,
		"hierarchical slope should stay near the shared mean")
	assert.Greater(t, unpooledSlope.SD, 1.5*hierSlope.SD,
		"unpooled slope should be far more uncertain than the regularized one")
}

func TestCompare_FitRecordsCarryIdentityAndDiagnostics(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{8, 8}
	report := compareOn(t, cfg)

	require.Len(t, report.Fits, 3)
	seen := map[string]bool{}
	for _, f := range report.Fits {
		assert.False(t, f.RunID == "", "missing run ID for %s", f.Variant)
		assert.False(t, f.Fingerprint == "", "missing fingerprint for %s", f.Variant)
		assert.NotEmpty(t, f.Summaries)
		assert.False(t, seen[f.RunID.String()], "run IDs must be unique")
		seen[f.RunID.String()] = true
	}

	// Same options and data, different variants: fingerprints differ.
	fp := map[string]bool{}
	for _, f := range report.Fits {
		key := f.Fingerprint.String()
		assert.False(t, fp[key], "fingerprint reused across variants")
		fp[key] = true
	}
}

func TestRMSD_UniformAcrossVariants(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{10, 10}
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	fitSvc := NewFitService(sampler.New(nil), nil)
	opts := ports.SampleOptions{Chains: 2, Warmup: 300, Draws: 300, Seed: 3}

	for _, v := range model.Variants() {
		fr, err := fitSvc.Fit(context.Background(), v, table, opts)
		require.NoError(t, err)

		got := RMSD(fr.Spec, fr.Posterior, table)
		assert.GreaterOrEqual(t, got, 0.0, "variant %s", v)

		// Recompute by hand through the spec accessors to pin the
		// one-formula contract.
		theta := fr.Posterior.MeanVector()
		sum := 0.0
		for i := 0; i < table.Len(); i++ {
			g := table.GroupAt(i)
			pred := fr.Spec.InterceptAt(theta, g) + fr.Spec.SlopeAt(theta, g)*table.X(i)
			d := table.Y(i) - pred
			sum += d * d
		}
		want := math.Sqrt(sum / float64(table.Len()))
		assert.InDelta(t, want, got, 1e-12, "variant %s", v)
	}
}

func TestCompare_ShrinkageRowsAlignWithGroups(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{3, 9, 27}
	report := compareOn(t, cfg)

	require.Len(t, report.Shrinkage, 3)
	for i, g := range report.Shrinkage {
		assert.Equal(t, fmt.Sprintf("g%02d", i), g.Group.String())
		assert.InDelta(t, math.Hypot(g.DeltaIntercept, g.DeltaSlope), g.Displacement, 1e-12)
	}
}
