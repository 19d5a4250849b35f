package spline

import (
	"gonum.org/v1/gonum/mat"
)

// PhaseSpline is a NodeSpline whose segment durations are themselves
// optimization variables (the end-effector's phase schedule). One polynomial
// spans one phase, so the motion and force splines of an end-effector stay
// aligned with the contact schedule by sharing the same PhaseDurations.
type PhaseSpline struct {
	*NodeSpline
	phases *PhaseDurations
}

func NewPhaseSpline(nodes *NodeSet, phases *PhaseDurations) (*PhaseSpline, error) {
	base, err := NewNodeSpline(nodes, phases.Durations())
	if err != nil {
		return nil, err
	}
	s := &PhaseSpline{NodeSpline: base, phases: phases}
	phases.AddObserver(func() { base.setDurations(phases.Durations()) })
	return s, nil
}

func (s *PhaseSpline) Phases() *PhaseDurations { return s.phases }

// JacobianOfPosWrtDurations writes ∂position(t)/∂(free phase durations),
// chaining the polynomial's duration sensitivity with the time-shift effect
// of earlier phases. Segment membership follows the same earlier-segment
// tie-break as Point, so value and Jacobian always agree on which polynomial
// t belongs to.
func (s *PhaseSpline) JacobianOfPosWrtDurations(t float64, jac *mat.Dense) {
	id, local := s.segmentAt(t)
	dxdT := s.polys[id].derivWrtDuration(local)
	xd := s.Point(t).Vel
	s.phases.JacobianOfPos(id, dxdT, xd, jac)
}
