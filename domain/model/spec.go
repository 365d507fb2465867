// Package model declares the three regression variants as graphs of
// named random variables. A spec is a directed dependency graph
// (hyperparameters -> group parameters -> likelihood) resolved at
// build time into a flat parameter layout; the sampler consumes the
// layout and never performs dynamic lookups.
package model

import (
	"fmt"

	"radonlab/internal/errors"
)

// Variant identifies a pooling strategy
type Variant string

const (
	VariantPooled       Variant = "pooled"
	VariantUnpooled     Variant = "unpooled"
	VariantHierarchical Variant = "hierarchical"
)

// Variants lists the supported variants in comparison order
func Variants() []Variant {
	return []Variant{VariantPooled, VariantUnpooled, VariantHierarchical}
}

// Card is the cardinality of a node: one value, or one per group
type Card int

const (
	Scalar Card = iota
	PerGroup
)

// PriorKind identifies the distribution family assigned to a node
type PriorKind int

const (
	// PriorNormal is a fixed-parameter normal prior
	PriorNormal PriorKind = iota
	// PriorHalfNormal is a positive half-normal prior, used for
	// group-level spread hyperparameters
	PriorHalfNormal
	// PriorHalfCauchy is a heavy-tailed positive prior, used for the
	// residual noise scale
	PriorHalfCauchy
	// PriorGroupNormal is a normal prior whose mean and spread are
	// themselves nodes of the graph (partial pooling)
	PriorGroupNormal
)

// Prior describes the distribution assigned to a node. For fixed
// families Mu/Scale are literal hyperparameters; for PriorGroupNormal
// MeanNode and ScaleNode name the scalar nodes supplying them.
type Prior struct {
	Kind      PriorKind
	Mu        float64
	Scale     float64
	MeanNode  string
	ScaleNode string
}

// Node is one named random variable in the graph
type Node struct {
	Name  string
	Card  Card
	Prior Prior
}

// Default prior widths, matching weakly-informative conventions for
// standardized log-scale responses.
const (
	DefaultCoefSD     = 10.0 // wide normal on intercepts/slopes
	DefaultHyperSD    = 10.0 // wide normal on group-mean hyperparameters
	DefaultSpreadSD   = 5.0  // half-normal on group-spread hyperparameters
	DefaultNoiseScale = 5.0  // half-cauchy on the residual scale
)

// Spec is a fully built model: the node graph plus its flat layout.
type Spec struct {
	variant Variant
	groups  int
	nodes   []Node
	offsets map[string]int
	size    int
}

// Builder accumulates nodes and resolves the flat layout on Build.
type Builder struct {
	variant Variant
	groups  int
	nodes   []Node
	err     error
}

// NewBuilder starts a spec for the given variant over `groups`
// distinct groups.
func NewBuilder(variant Variant, groups int) *Builder {
	b := &Builder{variant: variant, groups: groups}
	if groups <= 0 {
		b.err = errors.InvalidInput(fmt.Sprintf("model requires at least one group, got %d", groups))
	}
	return b
}

// Scalar adds a single-valued node
func (b *Builder) Scalar(name string, prior Prior) *Builder {
	return b.add(Node{Name: name, Card: Scalar, Prior: prior})
}

// PerGroup adds a group-indexed vector node
func (b *Builder) PerGroup(name string, prior Prior) *Builder {
	return b.add(Node{Name: name, Card: PerGroup, Prior: prior})
}

func (b *Builder) add(n Node) *Builder {
	if b.err != nil {
		return b
	}
	for _, existing := range b.nodes {
		if existing.Name == n.Name {
			b.err = errors.InvalidInput(fmt.Sprintf("duplicate node %q", n.Name))
			return b
		}
	}
	if n.Prior.Kind == PriorGroupNormal {
		if !b.hasScalar(n.Prior.MeanNode) || !b.hasScalar(n.Prior.ScaleNode) {
			b.err = errors.InvalidInput(fmt.Sprintf(
				"node %q: hyper nodes %q/%q must be declared scalars first",
				n.Name, n.Prior.MeanNode, n.Prior.ScaleNode))
			return b
		}
	}
	b.nodes = append(b.nodes, n)
	return b
}

func (b *Builder) hasScalar(name string) bool {
	for _, n := range b.nodes {
		if n.Name == name && n.Card == Scalar {
			return true
		}
	}
	return false
}

// Build resolves node offsets into a flat parameter vector layout.
func (b *Builder) Build() (*Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.nodes) == 0 {
		return nil, errors.InvalidInput("model has no nodes")
	}

	offsets := make(map[string]int, len(b.nodes))
	size := 0
	for _, n := range b.nodes {
		offsets[n.Name] = size
		if n.Card == PerGroup {
			size += b.groups
		} else {
			size++
		}
	}

	return &Spec{
		variant: b.variant,
		groups:  b.groups,
		nodes:   b.nodes,
		offsets: offsets,
		size:    size,
	}, nil
}

// Pooled builds the fully pooled variant: one intercept/slope pair
// shared by every observation.
func Pooled(groups int) (*Spec, error) {
	return NewBuilder(VariantPooled, groups).
		Scalar("a", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultCoefSD}).
		Scalar("b", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultCoefSD}).
		Scalar("sigma", Prior{Kind: PriorHalfCauchy, Scale: DefaultNoiseScale}).
		Build()
}

// Unpooled builds the fully unpooled variant: an independent
// intercept/slope pair per group, no sharing between groups.
func Unpooled(groups int) (*Spec, error) {
	return NewBuilder(VariantUnpooled, groups).
		PerGroup("a", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultCoefSD}).
		PerGroup("b", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultCoefSD}).
		Scalar("sigma", Prior{Kind: PriorHalfCauchy, Scale: DefaultNoiseScale}).
		Build()
}

// Hierarchical builds the partially pooled variant: per-group
// intercepts and slopes drawn from shared latent normals whose mean
// and spread are estimated. Every group entry of "a" is parameterized
// by the same (mu_a, sigma_a) pair; likewise "b".
func Hierarchical(groups int) (*Spec, error) {
	return NewBuilder(VariantHierarchical, groups).
		Scalar("mu_a", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultHyperSD}).
		Scalar("sigma_a", Prior{Kind: PriorHalfNormal, Scale: DefaultSpreadSD}).
		Scalar("mu_b", Prior{Kind: PriorNormal, Mu: 0, Scale: DefaultHyperSD}).
		Scalar("sigma_b", Prior{Kind: PriorHalfNormal, Scale: DefaultSpreadSD}).
		PerGroup("a", Prior{Kind: PriorGroupNormal, MeanNode: "mu_a", ScaleNode: "sigma_a"}).
		PerGroup("b", Prior{Kind: PriorGroupNormal, MeanNode: "mu_b", ScaleNode: "sigma_b"}).
		Scalar("sigma", Prior{Kind: PriorHalfCauchy, Scale: DefaultNoiseScale}).
		Build()
}

// ForVariant builds the spec for a named variant
func ForVariant(v Variant, groups int) (*Spec, error) {
	switch v {
	case VariantPooled:
		return Pooled(groups)
	case VariantUnpooled:
		return Unpooled(groups)
	case VariantHierarchical:
		return Hierarchical(groups)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown model variant %q", v))
	}
}

// Variant returns the pooling strategy of the spec
func (s *Spec) Variant() Variant { return s.variant }

// Groups returns the number of groups the spec was built for
func (s *Spec) Groups() int { return s.groups }

// Size returns the flat parameter-vector length
func (s *Spec) Size() int { return s.size }

// Nodes returns the graph nodes in declaration order
func (s *Spec) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Node returns a node by name
func (s *Spec) Node(name string) (Node, bool) {
	for _, n := range s.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Offset returns the flat-vector offset of a node
func (s *Spec) Offset(name string) (int, bool) {
	off, ok := s.offsets[name]
	return off, ok
}

// Slot returns the flat-vector index of entry g of a node. For scalar
// nodes every group resolves to the single shared slot, which is what
// makes one scoring routine work across all variants.
func (s *Spec) Slot(name string, g int) int {
	off := s.offsets[name]
	n, _ := s.Node(name)
	if n.Card == Scalar {
		return off
	}
	return off + g
}

// ParamCount returns the number of flat slots a node occupies
func (s *Spec) ParamCount(name string) int {
	n, ok := s.Node(name)
	if !ok {
		return 0
	}
	if n.Card == PerGroup {
		return s.groups
	}
	return 1
}

// ParamNames returns one name per flat slot, group entries rendered
// as name[i] with the dense group index.
func (s *Spec) ParamNames() []string {
	names := make([]string, 0, s.size)
	for _, n := range s.nodes {
		if n.Card == PerGroup {
			for g := 0; g < s.groups; g++ {
				names = append(names, fmt.Sprintf("%s[%d]", n.Name, g))
			}
		} else {
			names = append(names, n.Name)
		}
	}
	return names
}

// InterceptAt reads the intercept applying to group g from a flat
// parameter vector.
func (s *Spec) InterceptAt(theta []float64, g int) float64 {
	return theta[s.Slot("a", g)]
}

// SlopeAt reads the slope applying to group g from a flat parameter
// vector.
func (s *Spec) SlopeAt(theta []float64, g int) float64 {
	return theta[s.Slot("b", g)]
}

// NoiseAt reads the shared residual scale from a flat parameter vector
func (s *Spec) NoiseAt(theta []float64) float64 {
	off, _ := s.Offset("sigma")
	return theta[off]
}
