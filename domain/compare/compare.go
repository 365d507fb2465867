// Package compare defines the artifact produced by the three-way
// model comparison: predictive scores, per-group shrinkage, and the
// per-fit posterior summaries backing them.
package compare

import (
	"time"

	"radonlab/domain/core"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
)

// Score is the predictive-accuracy score of one variant. RMSD against
// the observed responses; lower is better, descriptive only.
type Score struct {
	Variant model.Variant `json:"variant"`
	RMSD    float64       `json:"rmsd"`
}

// GroupShrinkage is the displacement of one group's posterior-mean
// (intercept, slope) pair between the unpooled and hierarchical fits.
// Small groups are expected to move far toward the shared mean.
type GroupShrinkage struct {
	Group core.GroupLabel `json:"group"`
	Count int             `json:"count"`

	UnpooledIntercept float64 `json:"unpooled_intercept"`
	UnpooledSlope     float64 `json:"unpooled_slope"`
	HierIntercept     float64 `json:"hier_intercept"`
	HierSlope         float64 `json:"hier_slope"`

	// Delta components are hierarchical minus unpooled;
	// Displacement is the euclidean norm of the delta vector.
	DeltaIntercept float64 `json:"delta_intercept"`
	DeltaSlope     float64 `json:"delta_slope"`
	Displacement   float64 `json:"displacement"`
}

// FitRecord captures one fitted variant: identity, health, and
// posterior summaries.
type FitRecord struct {
	Variant     model.Variant    `json:"variant"`
	RunID       core.RunID       `json:"run_id"`
	Fingerprint core.Fingerprint `json:"fingerprint"`
	Elapsed     time.Duration    `json:"elapsed"`

	Healthy   bool     `json:"healthy"`
	Warnings  []string `json:"warnings,omitempty"`
	WorstRHat float64  `json:"worst_rhat"`
	WorstName string   `json:"worst_rhat_param"`

	Summaries []posterior.Summary `json:"summaries"`
}

// Report is the complete comparison artifact for one input table
type Report struct {
	CreatedAt    core.Timestamp `json:"created_at"`
	DatasetHash  core.Hash      `json:"dataset_hash"`
	Observations int            `json:"observations"`
	Groups       int            `json:"groups"`
	Seed         int64          `json:"seed"`

	Fits      []FitRecord      `json:"fits"`
	Scores    []Score          `json:"scores"`
	Shrinkage []GroupShrinkage `json:"shrinkage"`

	// Shared hyperparameter means from the hierarchical fit; the
	// point the per-group estimates shrink toward.
	HyperMeanIntercept float64 `json:"hyper_mean_intercept"`
	HyperMeanSlope     float64 `json:"hyper_mean_slope"`
}

// Fit returns the record for a variant
func (r *Report) Fit(v model.Variant) (FitRecord, bool) {
	for _, f := range r.Fits {
		if f.Variant == v {
			return f, true
		}
	}
	return FitRecord{}, false
}

// ScoreFor returns the RMSD entry for a variant
func (r *Report) ScoreFor(v model.Variant) (Score, bool) {
	for _, s := range r.Scores {
		if s.Variant == v {
			return s, true
		}
	}
	return Score{}, false
}
