// Package constraints contains the constraint and cost sets of the
// locomotion NLP. Every time-discretized constraint shares one scheduling
// skeleton and only supplies its per-instant physics or geometry.
package constraints

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
)

// InstantEvaluator supplies the meaning of one constraint at a single time
// instant. JacobianAt receives a zeroed (rowsPerInstant × variable-set rows)
// block and must leave it untouched for variable sets it does not depend on.
type InstantEvaluator interface {
	ValuesAt(t float64, out []float64)
	BoundsAt(t float64, out []nlp.Bounds)
	JacobianAt(t float64, id nlp.VarID, jac *mat.Dense)
}

// TimeGrid evaluates an InstantEvaluator on an ordered, duplicate-free set of
// times fixed at construction and assembles the per-instant results into one
// flat constraint block. Row k6·k+dim conventions live in the evaluators; the
// grid only owns the bookkeeping row = rowsPerInstant·k + i.
type TimeGrid struct {
	name    string
	times   []float64
	rowsPer int
	eval    InstantEvaluator
}

func NewTimeGrid(name string, total, dt float64, rowsPer int, eval InstantEvaluator) (*TimeGrid, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("constraint %s: dt must be positive, got %f", name, dt)
	}
	if total <= 0 {
		return nil, fmt.Errorf("constraint %s: horizon must be positive, got %f", name, total)
	}
	var times []float64
	for t := 0.0; t < total; t += dt {
		times = append(times, t)
	}
	// always evaluate the final instant, without duplicating it
	if total-times[len(times)-1] > 1e-9 {
		times = append(times, total)
	}
	return &TimeGrid{name: name, times: times, rowsPer: rowsPer, eval: eval}, nil
}

func (g *TimeGrid) Name() string     { return g.name }
func (g *TimeGrid) Rows() int        { return len(g.times) * g.rowsPer }
func (g *TimeGrid) Times() []float64 { return g.times }

func (g *TimeGrid) Values() []float64 {
	out := make([]float64, g.Rows())
	for k, t := range g.times {
		g.eval.ValuesAt(t, out[k*g.rowsPer:(k+1)*g.rowsPer])
	}
	return out
}

func (g *TimeGrid) ConstraintBounds() []nlp.Bounds {
	out := make([]nlp.Bounds, g.Rows())
	for k, t := range g.times {
		g.eval.BoundsAt(t, out[k*g.rowsPer:(k+1)*g.rowsPer])
	}
	return out
}

func (g *TimeGrid) Jacobian(id nlp.VarID, jac *mat.Dense) {
	_, cols := jac.Dims()
	for k, t := range g.times {
		block := jac.Slice(k*g.rowsPer, (k+1)*g.rowsPer, 0, cols).(*mat.Dense)
		g.eval.JacobianAt(t, id, block)
	}
}

var _ nlp.ConstraintSet = (*TimeGrid)(nil)
