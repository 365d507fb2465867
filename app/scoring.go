package app

import (
	"math"

	"radonlab/domain/dataset"
	"radonlab/domain/model"
	"radonlab/domain/posterior"
)

// RMSD computes the root-mean-square deviation between observed
// responses and the point predictions under posterior-mean
// parameters. The same routine serves every variant: the spec's slot
// resolution maps pooled groups onto the shared coefficients.
func RMSD(spec *model.Spec, post *posterior.Result, table *dataset.Table) float64 {
	theta := post.MeanVector()
	sum := 0.0
	for i := 0; i < table.Len(); i++ {
		g := table.GroupAt(i)
		pred := spec.InterceptAt(theta, g) + spec.SlopeAt(theta, g)*table.X(i)
		diff := table.Y(i) - pred
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(table.Len()))
}
