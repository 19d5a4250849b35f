// Package solver adapts an assembled nlp.Problem to the NLopt SLSQP backend.
// The problem side stays solver-agnostic; bound translation,
// equality/inequality row partitioning and the flat gradient layout all live
// here.
package solver

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
	"github.com/go-nlopt/nlopt"
	"go.uber.org/multierr"

	"github.com/san-kum/locoplan/internal/nlp"
)

type Options struct {
	MaxEval       int
	FtolRel       float64
	XtolRel       float64
	ConstraintTol float64
}

func DefaultOptions() Options {
	return Options{
		MaxEval:       3000,
		FtolRel:       1e-6,
		XtolRel:       1e-6,
		ConstraintTol: 1e-5,
	}
}

type Result struct {
	X           []float64
	Cost        float64
	Evaluations int
}

type Solver struct {
	logger golog.Logger
	opts   Options
}

func NewSolver(logger golog.Logger, opts Options) *Solver {
	return &Solver{logger: logger, opts: opts}
}

// evalCache avoids recomputing constraint values and the Jacobian when NLopt
// probes the objective and both constraint blocks at the same x.
type evalCache struct {
	prob *nlp.Problem
	x    []float64
	g    []float64
	jac  []float64 // row-major, rows × n
}

func (c *evalCache) refresh(x []float64) error {
	if c.x != nil && equal(c.x, x) {
		return nil
	}
	if err := c.prob.SetVariableVector(x); err != nil {
		return err
	}
	c.x = append(c.x[:0], x...)
	c.g = c.prob.ConstraintValues()
	jac := c.prob.ConstraintJacobian()
	rows, _ := jac.Dims()
	c.jac = c.jac[:0]
	for i := 0; i < rows; i++ {
		c.jac = append(c.jac, jac.RawRowView(i)...)
	}
	return nil
}

func equal(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// rowPartition splits constraint rows by bound type. Inequality rows become
// one-sided h(x) ≤ 0 entries, possibly two per original row.
type rowPartition struct {
	eq        []int
	eqOffset  []float64
	ineq      []int
	ineqBound []float64
	ineqSign  []float64 // +1: g − upper ≤ 0, −1: lower − g ≤ 0
}

func partition(bounds []nlp.Bounds) rowPartition {
	var p rowPartition
	for i, b := range bounds {
		if b.IsEquality() {
			p.eq = append(p.eq, i)
			p.eqOffset = append(p.eqOffset, b.Lower)
			continue
		}
		if !math.IsInf(b.Upper, 1) {
			p.ineq = append(p.ineq, i)
			p.ineqBound = append(p.ineqBound, b.Upper)
			p.ineqSign = append(p.ineqSign, 1)
		}
		if !math.IsInf(b.Lower, -1) {
			p.ineq = append(p.ineq, i)
			p.ineqBound = append(p.ineqBound, b.Lower)
			p.ineqSign = append(p.ineqSign, -1)
		}
	}
	return p
}

// Solve runs SLSQP on the problem, starting from the problem's current
// variable values, and leaves the optimized values written back into the
// variable sets.
func (s *Solver) Solve(prob *nlp.Problem) (*Result, error) {
	n := prob.NumVariables()
	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(n))
	if err != nil {
		return nil, fmt.Errorf("nlopt creation: %w", err)
	}
	defer opt.Destroy()

	lower := make([]float64, n)
	upper := make([]float64, n)
	for i, b := range prob.VariableBounds() {
		lower[i], upper[i] = b.Lower, b.Upper
	}

	cache := &evalCache{prob: prob}
	evaluations := 0

	objective := func(x, gradient []float64) float64 {
		evaluations++
		if err := cache.refresh(x); err != nil {
			s.logger.Errorw("objective evaluation failed", "error", err)
			if stopErr := opt.ForceStop(); stopErr != nil {
				s.logger.Errorw("force stop failed", "error", stopErr)
			}
			return 0
		}
		if !prob.HasCosts() {
			// pure feasibility problem
			for i := range gradient {
				gradient[i] = 0
			}
			return 0
		}
		if len(gradient) > 0 {
			copy(gradient, prob.CostGradient())
		}
		return prob.CostValue()
	}

	p := partition(prob.ConstraintBounds())

	eqFn := func(result, x, gradient []float64) {
		if err := cache.refresh(x); err != nil {
			s.logger.Errorw("equality evaluation failed", "error", err)
			return
		}
		for k, row := range p.eq {
			result[k] = cache.g[row] - p.eqOffset[k]
			if len(gradient) > 0 {
				copy(gradient[k*n:(k+1)*n], cache.jac[row*n:(row+1)*n])
			}
		}
	}

	ineqFn := func(result, x, gradient []float64) {
		if err := cache.refresh(x); err != nil {
			s.logger.Errorw("inequality evaluation failed", "error", err)
			return
		}
		for k, row := range p.ineq {
			result[k] = p.ineqSign[k] * (cache.g[row] - p.ineqBound[k])
			if len(gradient) > 0 {
				for j := 0; j < n; j++ {
					gradient[k*n+j] = p.ineqSign[k] * cache.jac[row*n+j]
				}
			}
		}
	}

	err = multierr.Combine(
		opt.SetLowerBounds(lower),
		opt.SetUpperBounds(upper),
		opt.SetMinObjective(objective),
		opt.SetFtolRel(s.opts.FtolRel),
		opt.SetXtolRel(s.opts.XtolRel),
		opt.SetMaxEval(s.opts.MaxEval),
	)
	if err == nil && len(p.eq) > 0 {
		err = multierr.Append(err, opt.AddEqualityMConstraint(eqFn, tolSlice(len(p.eq), s.opts.ConstraintTol)))
	}
	if err == nil && len(p.ineq) > 0 {
		err = multierr.Append(err, opt.AddInequalityMConstraint(ineqFn, tolSlice(len(p.ineq), s.opts.ConstraintTol)))
	}
	if err != nil {
		return nil, fmt.Errorf("nlopt setup: %w", err)
	}

	s.logger.Debugw("solving",
		"variables", n,
		"equality_rows", len(p.eq),
		"inequality_rows", len(p.ineq),
	)

	x, cost, err := opt.Optimize(prob.VariableVector())
	if err != nil {
		return nil, fmt.Errorf("nlopt optimize: %w", err)
	}
	if err := prob.SetVariableVector(x); err != nil {
		return nil, err
	}
	s.logger.Debugw("solved", "cost", cost, "evaluations", evaluations)
	return &Result{X: x, Cost: cost, Evaluations: evaluations}, nil
}

func tolSlice(n int, tol float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = tol
	}
	return out
}
