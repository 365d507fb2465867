package report

import (
	"strings"
	"testing"

	"radonlab/domain/compare"
	"radonlab/domain/core"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
)

func fixture() *compare.Report {
	return &compare.Report{
		CreatedAt:    core.Now(),
		DatasetHash:  core.NewHash([]byte("fixture")),
		Observations: 12,
		Groups:       3,
		Seed:         42,
		Fits: []compare.FitRecord{
			{
				Variant: model.VariantHierarchical,
				Healthy: false,
				Warnings: []string{
					"parameter sigma_b mixes poorly: ESS 61",
				},
				WorstRHat: 1.08,
				WorstName: "sigma_b",
				Summaries: []posterior.Summary{
					{Name: "mu_a", Mean: 1.33, SD: 0.09},
					{Name: "sigma_a", Mean: 0.31, SD: 0.05},
					{Name: "a[0]", Mean: 1.29, SD: 0.2},
				},
			},
		},
		Scores: []compare.Score{
			{Variant: model.VariantPooled, RMSD: 0.74},
			{Variant: model.VariantHierarchical, RMSD: 0.70},
		},
		Shrinkage: []compare.GroupShrinkage{
			{Group: "g00", Count: 2, Displacement: 0.61},
			{Group: "g01", Count: 50, Displacement: 0.04},
		},
		HyperMeanIntercept: 1.33,
		HyperMeanSlope:     -0.6,
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Markdown(fixture())

	for _, want := range []string{
		"# Multilevel model comparison",
		"## Predictive accuracy",
		"## Sampler health",
		"## Shrinkage toward the shared mean",
		"mu_a",
		"sigma_b mixes poorly",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Largest displacement is listed first.
	small := strings.Index(md, "| g00 |")
	large := strings.Index(md, "| g01 |")
	if small == -1 || large == -1 || small > large {
		t.Errorf("shrinkage rows not ordered by displacement")
	}
}

func TestMarkdown_PerGroupRowsLeftToWorkbook(t *testing.T) {
	md := Markdown(fixture())
	if strings.Contains(md, "a[0]") {
		t.Errorf("narrative should not list per-group parameters")
	}
}

func TestHTML_Renders(t *testing.T) {
	out := string(HTML(fixture()))
	if !strings.Contains(out, "<h1") {
		t.Errorf("expected rendered heading, got: %.80s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("expected rendered tables")
	}
}
