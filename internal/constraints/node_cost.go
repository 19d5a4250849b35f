package constraints

import (
	"fmt"

	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
)

// NodeCost penalizes the squared values of one derivative/dimension of a node
// set, e.g. force magnitudes or lateral base motion. Quadratic, so the
// gradient is trivial and exact.
type NodeCost struct {
	name   string
	nodes  *spline.NodeSet
	deriv  spline.Deriv
	dim    int
	weight float64
}

func NewNodeCost(name string, nodes *spline.NodeSet, deriv spline.Deriv, dim int, weight float64) *NodeCost {
	return &NodeCost{
		name:   fmt.Sprintf("%s-%s", name, nodes.ID()),
		nodes:  nodes,
		deriv:  deriv,
		dim:    dim,
		weight: weight,
	}
}

func (c *NodeCost) Name() string { return c.name }

func (c *NodeCost) Value() float64 {
	total := 0.0
	for _, n := range c.nodes.Nodes() {
		v := n.At(c.deriv)[c.dim]
		total += v * v
	}
	return c.weight * total
}

func (c *NodeCost) Gradient(id nlp.VarID, grad []float64) {
	if id != c.nodes.ID() {
		return
	}
	for i, n := range c.nodes.Nodes() {
		v := n.At(c.deriv)[c.dim]
		grad[c.nodes.Index(i, c.deriv, c.dim)] += 2 * c.weight * v
	}
}

var _ nlp.Cost = (*NodeCost)(nil)
