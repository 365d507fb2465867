// Package dataset holds the validated measurement table and the dense
// group index used by the model builders and the sampler.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"radonlab/domain/core"
	"radonlab/internal/errors"
)

// Observation is one house measurement: the county it belongs to, a
// 0/1 indicator for a below-ground level, and the log-transformed
// radon concentration.
type Observation struct {
	Group    core.GroupLabel `json:"group"`
	Basement int             `json:"basement"`
	LogRadon float64         `json:"log_radon"`
}

// GroupIndex maps group labels to a dense integer index, resolved once
// at table construction. Sampling and scoring address groups only
// through the dense index.
type GroupIndex struct {
	labels  []core.GroupLabel
	indices map[core.GroupLabel]int
	counts  []int
}

// Len returns the number of distinct groups
func (gi *GroupIndex) Len() int {
	return len(gi.labels)
}

// Label returns the label at a dense index
func (gi *GroupIndex) Label(i int) core.GroupLabel {
	return gi.labels[i]
}

// Labels returns all labels in dense-index order
func (gi *GroupIndex) Labels() []core.GroupLabel {
	out := make([]core.GroupLabel, len(gi.labels))
	copy(out, gi.labels)
	return out
}

// IndexOf returns the dense index for a label
func (gi *GroupIndex) IndexOf(label core.GroupLabel) (int, bool) {
	i, ok := gi.indices[label]
	return i, ok
}

// Count returns the number of observations in the group at a dense index
func (gi *GroupIndex) Count(i int) int {
	return gi.counts[i]
}

// Table is a validated, immutable collection of observations.
// Every observation belongs to exactly one group.
type Table struct {
	obs      []Observation
	groupIdx []int // per-observation dense group index
	index    *GroupIndex
	hash     core.Hash
}

// New validates the observations and builds the table. Validation is
// fail-fast: an empty group label, a covariate outside {0,1}, or a
// non-finite response rejects the whole input.
func New(obs []Observation) (*Table, error) {
	if len(obs) == 0 {
		return nil, errors.ValidationError("table must contain at least one observation")
	}

	for i, o := range obs {
		if strings.TrimSpace(string(o.Group)) == "" {
			return nil, errors.ValidationError(fmt.Sprintf("row %d: missing group label", i))
		}
		if o.Basement != 0 && o.Basement != 1 {
			return nil, errors.ValidationError(fmt.Sprintf("row %d: covariate must be 0 or 1, got %d", i, o.Basement))
		}
		if math.IsNaN(o.LogRadon) || math.IsInf(o.LogRadon, 0) {
			return nil, errors.ValidationError(fmt.Sprintf("row %d: response is not finite", i))
		}
	}

	index := buildGroupIndex(obs)

	groupIdx := make([]int, len(obs))
	for i, o := range obs {
		gi, _ := index.IndexOf(o.Group)
		groupIdx[i] = gi
		index.counts[gi]++
	}

	copied := make([]Observation, len(obs))
	copy(copied, obs)

	return &Table{
		obs:      copied,
		groupIdx: groupIdx,
		index:    index,
		hash:     hashObservations(copied),
	}, nil
}

// buildGroupIndex assigns dense indices in sorted label order so the
// mapping is stable across loads of the same data.
func buildGroupIndex(obs []Observation) *GroupIndex {
	seen := make(map[core.GroupLabel]bool)
	var labels []core.GroupLabel
	for _, o := range obs {
		if !seen[o.Group] {
			seen[o.Group] = true
			labels = append(labels, o.Group)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	indices := make(map[core.GroupLabel]int, len(labels))
	for i, l := range labels {
		indices[l] = i
	}

	return &GroupIndex{
		labels:  labels,
		indices: indices,
		counts:  make([]int, len(labels)),
	}
}

func hashObservations(obs []Observation) core.Hash {
	var sb strings.Builder
	for _, o := range obs {
		fmt.Fprintf(&sb, "%s|%d|%.17g\n", o.Group, o.Basement, o.LogRadon)
	}
	return core.NewHash([]byte(sb.String()))
}

// Len returns the number of observations
func (t *Table) Len() int {
	return len(t.obs)
}

// Groups returns the number of distinct groups
func (t *Table) Groups() int {
	return t.index.Len()
}

// Index returns the group index
func (t *Table) Index() *GroupIndex {
	return t.index
}

// Hash returns the content hash of the table
func (t *Table) Hash() core.Hash {
	return t.hash
}

// Row returns the observation at i
func (t *Table) Row(i int) Observation {
	return t.obs[i]
}

// GroupAt returns the dense group index of observation i
func (t *Table) GroupAt(i int) int {
	return t.groupIdx[i]
}

// X returns the covariate of observation i as a float
func (t *Table) X(i int) float64 {
	return float64(t.obs[i].Basement)
}

// Y returns the response of observation i
func (t *Table) Y(i int) float64 {
	return t.obs[i].LogRadon
}

// RowsInGroup returns the observation indices belonging to the group
// at a dense index.
func (t *Table) RowsInGroup(g int) []int {
	out := make([]int, 0, t.index.Count(g))
	for i, gi := range t.groupIdx {
		if gi == g {
			out = append(out, i)
		}
	}
	return out
}
