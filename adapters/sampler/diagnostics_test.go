package sampler

import (
	"math/rand"
	"testing"
)

func noiseChain(rng *rand.Rand, n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + rng.NormFloat64()
	}
	return out
}

func TestSplitRHat_MixedChainsNearOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	chains := [][]float64{
		noiseChain(rng, 1000, 0),
		noiseChain(rng, 1000, 0),
		noiseChain(rng, 1000, 0),
	}

	r := splitRHat(chains)
	if r < 0.99 || r > 1.02 {
		t.Errorf("well-mixed chains should have Rhat near 1, got %.4f", r)
	}
}

func TestSplitRHat_SeparatedChainsFlagged(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	chains := [][]float64{
		noiseChain(rng, 500, 0),
		noiseChain(rng, 500, 10),
	}

	r := splitRHat(chains)
	if r < 2 {
		t.Errorf("separated chains should have large Rhat, got %.4f", r)
	}
}

func TestSplitRHat_ConstantParameter(t *testing.T) {
	chains := [][]float64{
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	if got := splitRHat(chains); got != 1 {
		t.Errorf("constant parameter should have Rhat 1, got %.4f", got)
	}
}

func TestEffectiveSampleSize_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	chains := [][]float64{
		noiseChain(rng, 800, 0),
		noiseChain(rng, 800, 0),
	}

	ess := effectiveSampleSize(chains)
	if ess <= 0 || ess > 1600 {
		t.Fatalf("ESS out of range: %.1f", ess)
	}
	// Independent draws should retain most of the nominal sample size.
	if ess < 800 {
		t.Errorf("independent draws should have high ESS, got %.1f", ess)
	}
}

func TestEffectiveSampleSize_AutocorrelatedIsLower(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	// AR(1) with strong persistence.
	ar := func(n int) []float64 {
		out := make([]float64, n)
		x := 0.0
		for i := range out {
			x = 0.95*x + rng.NormFloat64()
			out[i] = x
		}
		return out
	}
	chains := [][]float64{ar(800), ar(800)}

	ess := effectiveSampleSize(chains)
	if ess > 400 {
		t.Errorf("sticky chains should lose most of their ESS, got %.1f", ess)
	}
}
