package nlp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Problem is the triple an external gradient-based solver consumes: a
// flattened variable vector with per-variable bounds, a stacked constraint
// vector with per-row bounds, and the constraint Jacobian. Row and column
// layout is fixed once all sets are registered and stays stable across calls.
type Problem struct {
	vars    []VariableSet
	cons    []ConstraintSet
	costs   []Cost
	colOf   map[VarID]int
	numVars int
	numCons int
}

func NewProblem() *Problem {
	return &Problem{colOf: make(map[VarID]int)}
}

func (p *Problem) AddVariableSet(v VariableSet) error {
	if _, ok := p.colOf[v.ID()]; ok {
		return fmt.Errorf("duplicate variable set %s", v.ID())
	}
	p.colOf[v.ID()] = p.numVars
	p.vars = append(p.vars, v)
	p.numVars += v.Rows()
	return nil
}

func (p *Problem) AddConstraintSet(c ConstraintSet) {
	p.cons = append(p.cons, c)
	p.numCons += c.Rows()
}

func (p *Problem) AddCost(c Cost) { p.costs = append(p.costs, c) }

func (p *Problem) NumVariables() int   { return p.numVars }
func (p *Problem) NumConstraints() int { return p.numCons }
func (p *Problem) HasCosts() bool      { return len(p.costs) > 0 }

func (p *Problem) VariableSets() []VariableSet { return p.vars }

// ColumnOf returns the first column of the given set in the flattened layout.
func (p *Problem) ColumnOf(id VarID) (int, bool) {
	c, ok := p.colOf[id]
	return c, ok
}

func (p *Problem) VariableVector() []float64 {
	x := make([]float64, 0, p.numVars)
	for _, v := range p.vars {
		x = append(x, v.Values()...)
	}
	return x
}

func (p *Problem) SetVariableVector(x []float64) error {
	if len(x) != p.numVars {
		return fmt.Errorf("variable vector has %d entries, want %d", len(x), p.numVars)
	}
	off := 0
	for _, v := range p.vars {
		n := v.Rows()
		v.SetValues(x[off : off+n])
		off += n
	}
	return nil
}

func (p *Problem) VariableBounds() []Bounds {
	b := make([]Bounds, 0, p.numVars)
	for _, v := range p.vars {
		b = append(b, v.VarBounds()...)
	}
	return b
}

func (p *Problem) ConstraintValues() []float64 {
	g := make([]float64, 0, p.numCons)
	for _, c := range p.cons {
		g = append(g, c.Values()...)
	}
	return g
}

func (p *Problem) ConstraintBounds() []Bounds {
	b := make([]Bounds, 0, p.numCons)
	for _, c := range p.cons {
		b = append(b, c.ConstraintBounds()...)
	}
	return b
}

// ConstraintJacobian assembles the full (numCons × numVars) Jacobian by asking
// every constraint set for its block against every variable set. Blocks a
// constraint does not touch stay zero.
func (p *Problem) ConstraintJacobian() *mat.Dense {
	jac := mat.NewDense(p.numCons, p.numVars, nil)
	row := 0
	for _, c := range p.cons {
		for _, v := range p.vars {
			block := mat.NewDense(c.Rows(), v.Rows(), nil)
			c.Jacobian(v.ID(), block)
			col := p.colOf[v.ID()]
			for i := 0; i < c.Rows(); i++ {
				for j := 0; j < v.Rows(); j++ {
					if e := block.At(i, j); e != 0 {
						jac.Set(row+i, col+j, e)
					}
				}
			}
		}
		row += c.Rows()
	}
	return jac
}

func (p *Problem) CostValue() float64 {
	total := 0.0
	for _, c := range p.costs {
		total += c.Value()
	}
	return total
}

func (p *Problem) CostGradient() []float64 {
	grad := make([]float64, p.numVars)
	for _, c := range p.costs {
		for _, v := range p.vars {
			col := p.colOf[v.ID()]
			c.Gradient(v.ID(), grad[col:col+v.Rows()])
		}
	}
	return grad
}
