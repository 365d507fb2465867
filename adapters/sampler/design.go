package sampler

import (
	"math"

	"radonlab/domain/dataset"
)

// design holds the table flattened into the arrays the conditional
// updates sweep over, plus per-group sufficient aggregates resolved
// once up front.
type design struct {
	n      int
	groups int

	x, y  []float64
	group []int // dense group index per row

	rowsByGroup [][]int
	sumX        []float64 // per group Σx
	sumXX       []float64 // per group Σx²

	yMean, ySD float64
}

func newDesign(t *dataset.Table) *design {
	n := t.Len()
	g := t.Groups()

	d := &design{
		n:           n,
		groups:      g,
		x:           make([]float64, n),
		y:           make([]float64, n),
		group:       make([]int, n),
		rowsByGroup: make([][]int, g),
		sumX:        make([]float64, g),
		sumXX:       make([]float64, g),
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		d.x[i] = t.X(i)
		d.y[i] = t.Y(i)
		gi := t.GroupAt(i)
		d.group[i] = gi
		d.rowsByGroup[gi] = append(d.rowsByGroup[gi], i)
		d.sumX[gi] += d.x[i]
		d.sumXX[gi] += d.x[i] * d.x[i]
		sum += d.y[i]
	}
	d.yMean = sum / float64(n)

	ss := 0.0
	for i := 0; i < n; i++ {
		diff := d.y[i] - d.yMean
		ss += diff * diff
	}
	if n > 1 {
		d.ySD = math.Sqrt(ss / float64(n-1))
	}
	if d.ySD == 0 {
		d.ySD = 1
	}
	return d
}
