package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radonlab/domain/model"
	"radonlab/internal/testkit"
	"radonlab/ports"
)

func testOptions() ports.SampleOptions {
	return ports.SampleOptions{Chains: 2, Warmup: 500, Draws: 500, Seed: 1234}
}

func TestEngine_PooledRecoversTruth(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{60, 60, 60}
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	spec, err := model.Pooled(table.Groups())
	require.NoError(t, err)

	post, err := New(nil).Sample(context.Background(), spec, table, testOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, post.Chains())
	assert.Equal(t, 500, post.DrawsPerChain())

	a, err := post.Mean("a")
	require.NoError(t, err)
	b, err := post.Mean("b")
	require.NoError(t, err)
	sigma, err := post.Mean("sigma")
	require.NoError(t, err)

	assert.InDelta(t, cfg.Intercept, a, 0.35)
	assert.InDelta(t, cfg.Slope, b, 0.45)
	assert.InDelta(t, cfg.NoiseSD, sigma, 0.2)

	// Diagnostics cover every parameter.
	for _, name := range post.Names() {
		r, ok := post.Diagnostics.RHat[name]
		require.True(t, ok, "missing Rhat for %s", name)
		assert.False(t, math.IsNaN(r), "NaN Rhat for %s", name)
	}
	assert.NotEmpty(t, post.Diagnostics.Acceptance["sigma"])
}

func TestEngine_HierarchicalParameterCounts(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{5, 20, 20, 20}
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	spec, err := model.Hierarchical(table.Groups())
	require.NoError(t, err)

	post, err := New(nil).Sample(context.Background(), spec, table, testOptions())
	require.NoError(t, err)

	// 4 hypers + 2 per-group vectors + noise.
	assert.Len(t, post.Names(), 4+2*table.Groups()+1)

	muA, err := post.Mean("mu_a")
	require.NoError(t, err)
	assert.InDelta(t, cfg.Intercept, muA, 0.5)
}

func TestEngine_DeterministicForSeed(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{10, 10}
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	spec, err := model.Unpooled(table.Groups())
	require.NoError(t, err)

	opts := ports.SampleOptions{Chains: 2, Warmup: 200, Draws: 200, Seed: 99}
	first, err := New(nil).Sample(context.Background(), spec, table, opts)
	require.NoError(t, err)
	second, err := New(nil).Sample(context.Background(), spec, table, opts)
	require.NoError(t, err)

	assert.Equal(t, first.MeanVector(), second.MeanVector())
}

func TestEngine_InputValidation(t *testing.T) {
	cfg := testkit.DefaultConfig()
	cfg.GroupSizes = []int{5, 5}
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	_, err = New(nil).Sample(context.Background(), nil, table, testOptions())
	assert.Error(t, err)

	// Spec built for a different group count than the table holds.
	spec, err := model.Unpooled(3)
	require.NoError(t, err)
	_, err = New(nil).Sample(context.Background(), spec, table, testOptions())
	assert.Error(t, err)
}

func TestEngine_ContextCancellation(t *testing.T) {
	cfg := testkit.DefaultConfig()
	table, err := testkit.NewGenerator(cfg).Generate()
	require.NoError(t, err)

	spec, err := model.Hierarchical(table.Groups())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = New(nil).Sample(ctx, spec, table, ports.SampleOptions{
		Chains: 2, Warmup: 5000, Draws: 5000, Seed: 1,
	})
	assert.Error(t, err)
}
