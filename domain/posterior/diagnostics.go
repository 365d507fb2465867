package posterior

import "fmt"

// RHatThreshold is the split-Rhat value above which a parameter is
// flagged as non-converged.
const RHatThreshold = 1.05

// MinESS is the effective-sample-size floor below which a parameter
// is flagged.
const MinESS = 100.0

// Diagnostics describes sampler health. Convergence problems are
// reported here, attached to the result, never as hard errors: the
// caller decides whether to trust the posterior.
type Diagnostics struct {
	Chains int   `json:"chains"`
	Draws  int   `json:"draws"`
	Warmup int   `json:"warmup"`
	Seed   int64 `json:"seed"`

	// RHat and ESS are keyed by flat parameter name.
	RHat map[string]float64 `json:"rhat"`
	ESS  map[string]float64 `json:"ess"`

	// Acceptance holds per-chain Metropolis acceptance rates for the
	// parameters updated by random-walk steps (the scale parameters;
	// conjugate updates always accept).
	Acceptance map[string][]float64 `json:"acceptance"`

	Warnings []string `json:"warnings"`
}

// Flag records a convergence warning
func (d *Diagnostics) Flag(format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}

// Healthy reports whether every parameter converged and no warnings
// were raised.
func (d *Diagnostics) Healthy() bool {
	if len(d.Warnings) > 0 {
		return false
	}
	for _, r := range d.RHat {
		if r > RHatThreshold {
			return false
		}
	}
	return true
}

// WorstRHat returns the parameter with the highest split-Rhat
func (d *Diagnostics) WorstRHat() (string, float64) {
	worst := ""
	val := 0.0
	for name, r := range d.RHat {
		if r > val {
			worst, val = name, r
		}
	}
	return worst, val
}
