package spline

import (
	"github.com/san-kum/locoplan/internal/nlp"
)

// NodeSet holds the boundary nodes of one spline and exposes them as a
// flattened optimization variable set. The layout packs one node at a time,
// positions before velocities:
//
//	idx = node*2*dim + d          for position, dimension d
//	idx = node*2*dim + dim + d    for velocity, dimension d
type NodeSet struct {
	id        nlp.VarID
	dim       int
	nodes     []Node
	bounds    []nlp.Bounds
	observers []func()
}

func NewNodeSet(id nlp.VarID, dim, nNodes int) *NodeSet {
	s := &NodeSet{
		id:    id,
		dim:   dim,
		nodes: make([]Node, nNodes),
	}
	for i := range s.nodes {
		s.nodes[i] = NewNode(dim)
	}
	s.bounds = make([]nlp.Bounds, s.Rows())
	for i := range s.bounds {
		s.bounds[i] = nlp.NoBound
	}
	return s
}

func (s *NodeSet) ID() nlp.VarID { return s.id }
func (s *NodeSet) Dim() int      { return s.dim }
func (s *NodeSet) Rows() int     { return len(s.nodes) * 2 * s.dim }
func (s *NodeSet) Nodes() []Node { return s.nodes }

// Index maps (node, derivative, dimension) to its flattened variable index.
func (s *NodeSet) Index(node int, d Deriv, dim int) int {
	idx := node * 2 * s.dim
	if d == Vel {
		idx += s.dim
	}
	return idx + dim
}

func (s *NodeSet) Values() []float64 {
	x := make([]float64, s.Rows())
	for i, n := range s.nodes {
		for d := 0; d < s.dim; d++ {
			x[s.Index(i, Pos, d)] = n.Pos[d]
			x[s.Index(i, Vel, d)] = n.Vel[d]
		}
	}
	return x
}

func (s *NodeSet) SetValues(x []float64) {
	for i := range s.nodes {
		for d := 0; d < s.dim; d++ {
			s.nodes[i].Pos[d] = x[s.Index(i, Pos, d)]
			s.nodes[i].Vel[d] = x[s.Index(i, Vel, d)]
		}
	}
	s.notify()
}

func (s *NodeSet) VarBounds() []nlp.Bounds { return s.bounds }

// AddObserver registers a callback fired after every SetValues, used by
// splines to recompute their polynomial coefficients.
func (s *NodeSet) AddObserver(fn func()) { s.observers = append(s.observers, fn) }

func (s *NodeSet) notify() {
	for _, fn := range s.observers {
		fn()
	}
}

// AddBound pins a single node value to a fixed number.
func (s *NodeSet) AddBound(node int, d Deriv, dim int, val float64) {
	s.bounds[s.Index(node, d, dim)] = nlp.Bounds{Lower: val, Upper: val}
	s.nodes[node].At(d)[dim] = val
}

func (s *NodeSet) AddStartBound(d Deriv, dims []int, val []float64) {
	for _, dim := range dims {
		s.AddBound(0, d, dim, val[dim])
	}
}

func (s *NodeSet) AddFinalBound(d Deriv, dims []int, val []float64) {
	for _, dim := range dims {
		s.AddBound(len(s.nodes)-1, d, dim, val[dim])
	}
}

// AddAllBounds boxes one dimension/derivative of every node, e.g. to cap
// contact force magnitudes.
func (s *NodeSet) AddAllBounds(d Deriv, dim int, b nlp.Bounds) {
	for i := range s.nodes {
		s.bounds[s.Index(i, d, dim)] = b
	}
}

// InitializeTowardsGoal spreads the nodes on the straight line from initial
// to final position, all carrying the average velocity. A feasible-looking
// start matters for solver convergence but not for correctness.
func (s *NodeSet) InitializeTowardsGoal(initial, final []float64, tTotal float64) {
	n := len(s.nodes)
	for i := range s.nodes {
		frac := float64(i) / float64(n-1)
		for d := 0; d < s.dim; d++ {
			dp := final[d] - initial[d]
			s.nodes[i].Pos[d] = initial[d] + frac*dp
			s.nodes[i].Vel[d] = dp / tTotal
		}
	}
	s.notify()
}
