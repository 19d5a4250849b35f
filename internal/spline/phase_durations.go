package spline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
)

// PhaseDurations holds the contact/swing phase lengths of one end-effector as
// optimization variables. The last phase is dependent, absorbing whatever is
// left of the total motion time, so only the first n−1 durations are free. That keeps the per-EE timing summing to the horizon by
// construction instead of through an extra equality constraint.
type PhaseDurations struct {
	id        nlp.VarID
	durations []float64
	tTotal    float64
	bounds    []nlp.Bounds
	observers []func()
}

func NewPhaseDurations(ee int, durations []float64, minDuration float64) (*PhaseDurations, error) {
	if len(durations) < 1 {
		return nil, fmt.Errorf("end-effector %d needs at least one phase", ee)
	}
	total := 0.0
	for i, d := range durations {
		if d <= 0 {
			return nil, fmt.Errorf("end-effector %d phase %d has non-positive duration %f", ee, i, d)
		}
		total += d
	}
	p := &PhaseDurations{
		id:        nlp.VarID{Kind: nlp.EESchedule, EE: ee},
		durations: append([]float64(nil), durations...),
		tTotal:    total,
	}
	p.bounds = make([]nlp.Bounds, p.Rows())
	for i := range p.bounds {
		p.bounds[i] = nlp.Bounds{Lower: minDuration, Upper: total}
	}
	return p, nil
}

func (p *PhaseDurations) ID() nlp.VarID        { return p.id }
func (p *PhaseDurations) Rows() int            { return len(p.durations) - 1 }
func (p *PhaseDurations) Total() float64       { return p.tTotal }
func (p *PhaseDurations) Durations() []float64 { return p.durations }

func (p *PhaseDurations) Values() []float64 {
	return append([]float64(nil), p.durations[:p.Rows()]...)
}

func (p *PhaseDurations) SetValues(x []float64) {
	sum := 0.0
	for i, v := range x {
		p.durations[i] = v
		sum += v
	}
	last := p.tTotal - sum
	if last < durationEps {
		last = durationEps
	}
	p.durations[len(p.durations)-1] = last
	for _, fn := range p.observers {
		fn()
	}
}

func (p *PhaseDurations) VarBounds() []nlp.Bounds { return p.bounds }

func (p *PhaseDurations) AddObserver(fn func()) { p.observers = append(p.observers, fn) }

// JacobianOfPos writes ∂x(t)/∂ΔT_i for every free duration, given that t lies
// in phase `current`, dxdT = ∂p/∂T of the containing polynomial at fixed local
// time, and xd = the spline velocity at t. Three effects compose:
//   - the containing phase's own duration rescales its polynomial (+dxdT),
//   - every earlier phase shifts the spline along the time axis (−xd),
//   - inside the dependent last phase, growing any free duration additionally
//     compresses it (−dxdT).
func (p *PhaseDurations) JacobianOfPos(current int, dxdT, xd []float64, jac *mat.Dense) {
	inLast := current == len(p.durations)-1
	for col := 0; col < p.Rows(); col++ {
		for d := range xd {
			v := 0.0
			switch {
			case col == current && !inLast:
				v = dxdT[d]
			case col < current:
				v = -xd[d]
				if inLast {
					v -= dxdT[d]
				}
			}
			jac.Set(d, col, v)
		}
	}
}

var _ nlp.VariableSet = (*PhaseDurations)(nil)
