// Package formulation assembles the full locomotion NLP: variable sets,
// constraint sets and costs, wired against one shared spline bundle and one
// shared dynamic model.
package formulation

import (
	"fmt"
	"math"
)

// Constraint and cost names accepted by the factory.
const (
	ConstraintDynamic       = "dynamic"
	ConstraintRangeOfMotion = "range-of-motion"
	ConstraintFriction      = "friction"
	ConstraintTerrain       = "terrain"

	CostForceEffort = "force-effort"
	CostBaseMotion  = "base-motion"
)

// DefaultConstraints is the set a complete locomotion problem needs.
var DefaultConstraints = []string{
	ConstraintDynamic,
	ConstraintRangeOfMotion,
	ConstraintFriction,
	ConstraintTerrain,
}

// CostWeight names one cost term with its scaling.
type CostWeight struct {
	Name   string
	Weight float64
}

// MotionParams configures one locomotion problem.
type MotionParams struct {
	TotalTime float64
	EECount   int

	// PhaseDurations holds the initial contact/swing schedule per
	// end-effector; FirstPhaseContact tells how the alternation starts.
	PhaseDurations    [][]float64
	FirstPhaseContact []bool
	OptimizeDurations bool
	MinPhaseDuration  float64

	ForceLimit float64

	// BasePolyDuration is the target length of one base-spline segment.
	BasePolyDuration float64

	// Discretization steps of the time-gridded constraints.
	DtDynamic    float64
	DtConstraint float64

	Constraints []string
	Costs       []CostWeight
}

// DefaultParams returns a sensible configuration for the given schedule.
func DefaultParams(eeCount int, totalTime float64) MotionParams {
	phases := make([][]float64, eeCount)
	first := make([]bool, eeCount)
	for ee := range phases {
		phases[ee] = []float64{0.4 * totalTime, 0.2 * totalTime, 0.4 * totalTime}
		first[ee] = true
	}
	return MotionParams{
		TotalTime:         totalTime,
		EECount:           eeCount,
		PhaseDurations:    phases,
		FirstPhaseContact: first,
		MinPhaseDuration:  0.1,
		ForceLimit:        1000,
		BasePolyDuration:  0.1,
		DtDynamic:         0.1,
		DtConstraint:      0.08,
		Constraints:       append([]string(nil), DefaultConstraints...),
		Costs:             nil,
	}
}

const scheduleTol = 1e-6

func (p MotionParams) Validate() error {
	if p.TotalTime <= 0 {
		return fmt.Errorf("total time must be positive, got %f", p.TotalTime)
	}
	if p.EECount < 1 {
		return fmt.Errorf("need at least one end-effector, got %d", p.EECount)
	}
	if len(p.PhaseDurations) != p.EECount {
		return fmt.Errorf("%d phase schedules for %d end-effectors", len(p.PhaseDurations), p.EECount)
	}
	if len(p.FirstPhaseContact) != p.EECount {
		return fmt.Errorf("%d contact flags for %d end-effectors", len(p.FirstPhaseContact), p.EECount)
	}
	for ee, phases := range p.PhaseDurations {
		sum := 0.0
		for i, d := range phases {
			if d <= 0 {
				return fmt.Errorf("end-effector %d phase %d: non-positive duration %f", ee, i, d)
			}
			sum += d
		}
		if math.Abs(sum-p.TotalTime) > scheduleTol {
			return fmt.Errorf("end-effector %d schedule sums to %f, want %f", ee, sum, p.TotalTime)
		}
	}
	if p.BasePolyDuration <= 0 {
		return fmt.Errorf("base polynomial duration must be positive, got %f", p.BasePolyDuration)
	}
	if p.DtDynamic <= 0 || p.DtConstraint <= 0 {
		return fmt.Errorf("discretization steps must be positive, got %f and %f", p.DtDynamic, p.DtConstraint)
	}
	if p.ForceLimit <= 0 {
		return fmt.Errorf("force limit must be positive, got %f", p.ForceLimit)
	}
	return nil
}
