// Package report renders a comparison report as a markdown narrative,
// the textual counterpart of the usual shrinkage plots, and converts
// it to HTML for the serve surface.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"radonlab/domain/compare"
	"radonlab/domain/model"
)

// Markdown renders the full comparison report
func Markdown(r *compare.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Multilevel model comparison\n\n")
	fmt.Fprintf(&sb, "Generated %s · %d observations in %d groups · seed %d\n\n",
		r.CreatedAt.String(), r.Observations, r.Groups, r.Seed)
	fmt.Fprintf(&sb, "Dataset hash: `%s`\n\n", r.DatasetHash.String())

	writeScores(&sb, r)
	writeFits(&sb, r)
	writeShrinkage(&sb, r)

	return sb.String()
}

// HTML converts the markdown report to a standalone HTML fragment
func HTML(r *compare.Report) []byte {
	md := []byte(Markdown(r))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func writeScores(sb *strings.Builder, r *compare.Report) {
	fmt.Fprintf(sb, "## Predictive accuracy (RMSD, lower is better)\n\n")
	fmt.Fprintf(sb, "| Variant | RMSD |\n|---|---|\n")
	for _, s := range r.Scores {
		fmt.Fprintf(sb, "| %s | %.4f |\n", s.Variant, s.RMSD)
	}
	fmt.Fprintf(sb, "\n")
}

func writeFits(sb *strings.Builder, r *compare.Report) {
	fmt.Fprintf(sb, "## Sampler health\n\n")
	fmt.Fprintf(sb, "| Variant | Healthy | Worst R-hat | Elapsed |\n|---|---|---|---|\n")
	for _, f := range r.Fits {
		fmt.Fprintf(sb, "| %s | %v | %.3f (%s) | %s |\n",
			f.Variant, f.Healthy, f.WorstRHat, f.WorstName, f.Elapsed.Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "\n")

	for _, f := range r.Fits {
		if len(f.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(sb, "Warnings for %s:\n\n", f.Variant)
		for _, w := range f.Warnings {
			fmt.Fprintf(sb, "- %s\n", w)
		}
		fmt.Fprintf(sb, "\n")
	}

	// Hyperparameter summary for the hierarchical fit only; per-group
	// tables go to the workbook export instead of the narrative.
	if f, ok := r.Fit(model.VariantHierarchical); ok {
		fmt.Fprintf(sb, "### Hierarchical hyperparameters\n\n")
		fmt.Fprintf(sb, "| Parameter | Mean | SD | 5%% | 95%% | R-hat | ESS |\n|---|---|---|---|---|---|---|\n")
		for _, s := range f.Summaries {
			switch s.Name {
			case "mu_a", "sigma_a", "mu_b", "sigma_b", "sigma":
				fmt.Fprintf(sb, "| %s | %.3f | %.3f | %.3f | %.3f | %.3f | %.0f |\n",
					s.Name, s.Mean, s.SD, s.Q5, s.Q95, s.RHat, s.ESS)
			}
		}
		fmt.Fprintf(sb, "\n")
	}
}

func writeShrinkage(sb *strings.Builder, r *compare.Report) {
	fmt.Fprintf(sb, "## Shrinkage toward the shared mean (%.3f, %.3f)\n\n",
		r.HyperMeanIntercept, r.HyperMeanSlope)
	fmt.Fprintf(sb, "Displacement of each group's (intercept, slope) point estimate\n")
	fmt.Fprintf(sb, "from the unpooled fit to the hierarchical fit, largest movers first.\n\n")

	rows := make([]compare.GroupShrinkage, len(r.Shrinkage))
	copy(rows, r.Shrinkage)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Displacement > rows[j].Displacement })

	fmt.Fprintf(sb, "| Group | N | Unpooled (a, b) | Hierarchical (a, b) | Displacement |\n|---|---|---|---|---|\n")
	for _, g := range rows {
		fmt.Fprintf(sb, "| %s | %d | (%.3f, %.3f) | (%.3f, %.3f) | %.3f |\n",
			g.Group, g.Count,
			g.UnpooledIntercept, g.UnpooledSlope,
			g.HierIntercept, g.HierSlope,
			g.Displacement)
	}
	fmt.Fprintf(sb, "\n")
}
