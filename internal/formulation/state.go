package formulation

import (
	"github.com/golang/geo/r3"
)

// State3 is a position/velocity pair of a 3-dimensional quantity.
type State3 struct {
	Pos [3]float64
	Vel [3]float64
}

// BaseState carries the linear and angular (Euler roll/pitch/yaw) state of
// the floating base.
type BaseState struct {
	Lin State3
	Ang State3
}

// RobotState is the full boundary condition of a problem: base state plus one
// position per end-effector.
type RobotState struct {
	Base  BaseState
	EEPos []r3.Vector
}

// StandingState places the base at the given position with nominal stance
// feet on the ground, all velocities zero.
func StandingState(basePos r3.Vector, stance []r3.Vector) RobotState {
	s := RobotState{
		Base: BaseState{
			Lin: State3{Pos: [3]float64{basePos.X, basePos.Y, basePos.Z}},
		},
		EEPos: make([]r3.Vector, len(stance)),
	}
	for ee, nom := range stance {
		foot := basePos.Add(nom)
		s.EEPos[ee] = r3.Vector{X: foot.X, Y: foot.Y, Z: 0}
	}
	return s
}
