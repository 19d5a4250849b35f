// Package dynamics provides the rigid-body physics model that predicts the
// base acceleration implied by end-effector contact forces, together with the
// analytic partial derivatives the constraint layer composes with spline
// Jacobians.
package dynamics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Base-acceleration row layout: angular first, then linear.
const (
	AX = 0
	AY = 1
	AZ = 2
	LX = 3
	LY = 4
	LZ = 5

	K3D = 3
	K6D = 6
)

// Model is the stateless-per-call physics contract. SetCurrent loads the
// instantaneous state; every subsequent query refers to that state until the
// next SetCurrent. Each Jacobian accessor takes the Jacobian of its input
// category w.r.t. some variable set (3 × n) and writes the chained 6 × n
// block of the base acceleration w.r.t. that same variable set.
type Model interface {
	SetCurrent(comPos, omega r3.Vector, force, eePos []r3.Vector) error
	BaseAccelerationInWorld() []float64

	// G is the signed gravitational acceleration constant of the
	// formulation, consumed directly by constraint bounds.
	G() float64
	Mass() float64
	EECount() int

	JacobianOfAccWrtBaseLin(jacPos *mat.Dense, jac *mat.Dense)
	JacobianOfAccWrtBaseAng(jacAngVel *mat.Dense, jac *mat.Dense)
	JacobianOfAccWrtForce(jacForce *mat.Dense, ee int, jac *mat.Dense)
	JacobianOfAccWrtEEPos(jacEEPos *mat.Dense, ee int, jac *mat.Dense)
}

func skew(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

func mulVec(m *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}
