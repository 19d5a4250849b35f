package spline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
)

// NodeSpline is a piecewise cubic Hermite trajectory over a fixed sequence of
// segment durations. Coefficients are recomputed from the nodes whenever the
// solver writes new values; queries then read the cached polynomials.
type NodeSpline struct {
	nodes     *NodeSet
	durations []float64
	polys     []cubicHermite
	tTotal    float64
}

func NewNodeSpline(nodes *NodeSet, durations []float64) (*NodeSpline, error) {
	if len(durations) != len(nodes.Nodes())-1 {
		return nil, fmt.Errorf("spline needs %d durations for %d nodes, got %d",
			len(nodes.Nodes())-1, len(nodes.Nodes()), len(durations))
	}
	for i, d := range durations {
		if d <= 0 {
			return nil, fmt.Errorf("segment %d has non-positive duration %f", i, d)
		}
	}
	s := &NodeSpline{
		nodes:     nodes,
		durations: append([]float64(nil), durations...),
		polys:     make([]cubicHermite, len(durations)),
	}
	for i := range s.polys {
		s.polys[i] = newCubicHermite(nodes.Dim())
	}
	s.updatePolynomials()
	nodes.AddObserver(s.updatePolynomials)
	return s, nil
}

func (s *NodeSpline) Nodes() *NodeSet      { return s.nodes }
func (s *NodeSpline) Dim() int             { return s.nodes.Dim() }
func (s *NodeSpline) Total() float64       { return s.tTotal }
func (s *NodeSpline) Durations() []float64 { return s.durations }

func (s *NodeSpline) updatePolynomials() {
	nodes := s.nodes.Nodes()
	s.tTotal = 0
	for i := range s.polys {
		s.polys[i].update(s.durations[i], nodes[i], nodes[i+1])
		s.tTotal += s.durations[i]
	}
}

func (s *NodeSpline) setDurations(durations []float64) {
	copy(s.durations, durations)
	s.updatePolynomials()
}

// segmentAt locates the segment containing t and the time local to it. A t
// sitting exactly on a segment boundary belongs to the earlier segment; t is
// clamped into [0, total] first.
func (s *NodeSpline) segmentAt(t float64) (int, float64) {
	if t < 0 {
		t = 0
	}
	if t > s.tTotal {
		t = s.tTotal
	}
	cum := 0.0
	for i, d := range s.durations {
		if t <= cum+d || i == len(s.durations)-1 {
			return i, t - cum
		}
		cum += d
	}
	return 0, t
}

// Point evaluates position, velocity and acceleration at global time t.
func (s *NodeSpline) Point(t float64) State {
	id, local := s.segmentAt(t)
	return s.polys[id].point(local)
}

// JacobianWrtNodes writes the sensitivity of the trajectory's d-th derivative
// at time t to every flattened node variable. Only the two boundary nodes of
// the containing segment carry weight; all other columns stay zero.
func (s *NodeSpline) JacobianWrtNodes(t float64, d Deriv, jac *mat.Dense) {
	id, local := s.segmentAt(t)
	wx0, wv0, wx1, wv1 := s.polys[id].nodeWeights(local, d)
	for dim := 0; dim < s.Dim(); dim++ {
		jac.Set(dim, s.nodes.Index(id, Pos, dim), wx0)
		jac.Set(dim, s.nodes.Index(id, Vel, dim), wv0)
		jac.Set(dim, s.nodes.Index(id+1, Pos, dim), wx1)
		jac.Set(dim, s.nodes.Index(id+1, Vel, dim), wv1)
	}
}

var _ nlp.VariableSet = (*NodeSet)(nil)
