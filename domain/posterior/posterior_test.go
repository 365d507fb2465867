package posterior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoChainResult(t *testing.T) *Result {
	t.Helper()
	names := []string{"a", "b"}
	chains := [][][]float64{
		{{1, 10}, {2, 20}, {3, 30}},
		{{3, 30}, {4, 40}, {5, 50}},
	}
	r, err := New(names, chains, Diagnostics{
		RHat: map[string]float64{"a": 1.01, "b": 1.02},
		ESS:  map[string]float64{"a": 400, "b": 380},
	})
	require.NoError(t, err)
	return r
}

func TestNew_RejectsRaggedChains(t *testing.T) {
	names := []string{"a"}

	_, err := New(names, nil, Diagnostics{})
	assert.Error(t, err, "no chains")

	_, err = New(names, [][][]float64{{{1}}, {{1}, {2}}}, Diagnostics{})
	assert.Error(t, err, "draw counts differ")

	_, err = New(names, [][][]float64{{{1, 2}}}, Diagnostics{})
	assert.Error(t, err, "parameter count mismatch")
}

func TestResult_MeansAndDraws(t *testing.T) {
	r := twoChainResult(t)

	mean, err := r.Mean("a")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, mean, 1e-12)

	draws, err := r.Draws("b")
	require.NoError(t, err)
	assert.Len(t, draws, 6)

	vec := r.MeanVector()
	assert.InDelta(t, 3.0, vec[0], 1e-12)
	assert.InDelta(t, 30.0, vec[1], 1e-12)

	_, err = r.Mean("missing")
	assert.Error(t, err)
}

func TestResult_Summarize(t *testing.T) {
	r := twoChainResult(t)

	s, err := r.Summarize("a")
	require.NoError(t, err)
	assert.Equal(t, "a", s.Name)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.01, s.RHat, 1e-12)
	assert.Greater(t, s.SD, 0.0)

	table, err := r.SummaryTable()
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestDiagnostics_Healthy(t *testing.T) {
	d := Diagnostics{RHat: map[string]float64{"a": 1.0}}
	assert.True(t, d.Healthy())

	d.RHat["b"] = 1.2
	assert.False(t, d.Healthy())

	d = Diagnostics{RHat: map[string]float64{"a": 1.0}}
	d.Flag("chain %d stalled", 2)
	assert.False(t, d.Healthy())
	assert.Len(t, d.Warnings, 1)
}
