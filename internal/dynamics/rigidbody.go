package dynamics

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// DefaultGravity is the magnitude of the gravitational acceleration used by
// the formulation. It appears as the bound of the linear-z dynamic constraint
// row rather than inside the model's linear acceleration.
const DefaultGravity = 9.81

// Params describes one robot topology: a single rigid body with a number of
// massless-leg end-effectors.
type Params struct {
	Name    string
	Mass    float64
	Inertia [9]float64 // row-major, base frame aligned with world
	EECount int
	Gravity float64

	// NominalStance is the default end-effector position relative to the
	// base; MaxDeviation is the reachable box around it.
	NominalStance []r3.Vector
	MaxDeviation  r3.Vector
}

// SingleRigidBody models the robot as one lumped body driven by end-effector
// contact forces (Newton–Euler). Concrete robots differ only in Params.
type SingleRigidBody struct {
	params     Params
	inertia    *mat.Dense
	inertiaInv *mat.Dense

	// instantaneous state, loaded by SetCurrent before every query
	comPos r3.Vector
	omega  r3.Vector
	force  []r3.Vector
	eePos  []r3.Vector
}

func New(p Params) (*SingleRigidBody, error) {
	if p.Mass <= 0 {
		return nil, fmt.Errorf("robot %q: mass must be positive, got %f", p.Name, p.Mass)
	}
	if p.EECount < 1 {
		return nil, fmt.Errorf("robot %q: need at least one end-effector", p.Name)
	}
	if len(p.NominalStance) != p.EECount {
		return nil, fmt.Errorf("robot %q: %d nominal stances for %d end-effectors",
			p.Name, len(p.NominalStance), p.EECount)
	}
	if p.Gravity == 0 {
		p.Gravity = DefaultGravity
	}
	inertia := mat.NewDense(3, 3, p.Inertia[:])
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(inertia); err != nil {
		return nil, fmt.Errorf("robot %q: inertia tensor not invertible: %w", p.Name, err)
	}
	return &SingleRigidBody{params: p, inertia: inertia, inertiaInv: inv}, nil
}

func (m *SingleRigidBody) Name() string  { return m.params.Name }
func (m *SingleRigidBody) Mass() float64 { return m.params.Mass }
func (m *SingleRigidBody) G() float64    { return m.params.Gravity }
func (m *SingleRigidBody) EECount() int  { return m.params.EECount }

func (m *SingleRigidBody) NominalStance(ee int) r3.Vector { return m.params.NominalStance[ee] }
func (m *SingleRigidBody) MaxDeviation() r3.Vector        { return m.params.MaxDeviation }

func (m *SingleRigidBody) SetCurrent(comPos, omega r3.Vector, force, eePos []r3.Vector) error {
	if len(force) != m.params.EECount || len(eePos) != m.params.EECount {
		return fmt.Errorf("robot %q: got %d forces / %d positions for %d end-effectors",
			m.params.Name, len(force), len(eePos), m.params.EECount)
	}
	m.comPos = comPos
	m.omega = omega
	m.force = force
	m.eePos = eePos
	return nil
}

// BaseAccelerationInWorld returns the 6-vector (angular, linear) acceleration
// the current forces produce. Gravity is deliberately absent from the linear
// part; the dynamic constraint's linear-z bound carries it.
func (m *SingleRigidBody) BaseAccelerationInWorld() []float64 {
	var fSum, tau r3.Vector
	for ee, f := range m.force {
		fSum = fSum.Add(f)
		tau = tau.Add(m.eePos[ee].Sub(m.comPos).Cross(f))
	}
	iw := mulVec(m.inertia, m.omega)
	angAcc := mulVec(m.inertiaInv, tau.Sub(m.omega.Cross(iw)))
	linAcc := fSum.Mul(1 / m.params.Mass)

	acc := make([]float64, K6D)
	acc[AX], acc[AY], acc[AZ] = angAcc.X, angAcc.Y, angAcc.Z
	acc[LX], acc[LY], acc[LZ] = linAcc.X, linAcc.Y, linAcc.Z
	return acc
}

// JacobianOfAccWrtBaseLin: only the torques depend on the base position,
// through the lever arms: ∂Σ(p−c)×f / ∂c = Σ skew(f).
func (m *SingleRigidBody) JacobianOfAccWrtBaseLin(jacPos *mat.Dense, jac *mat.Dense) {
	sum := mat.NewDense(3, 3, nil)
	for _, f := range m.force {
		sum.Add(sum, skew(f))
	}
	m.writeAngular(sum, jacPos, jac)
}

// JacobianOfAccWrtBaseAng: the gyroscopic term is the only ω dependence:
// ∂(−ω×Iω)/∂ω = skew(Iω) − skew(ω)·I.
func (m *SingleRigidBody) JacobianOfAccWrtBaseAng(jacAngVel *mat.Dense, jac *mat.Dense) {
	iw := mulVec(m.inertia, m.omega)
	d := mat.NewDense(3, 3, nil)
	d.Mul(skew(m.omega), m.inertia)
	d.Sub(skew(iw), d)
	m.writeAngular(d, jacAngVel, jac)
}

// JacobianOfAccWrtForce: torque via the lever arm, linear via Σf/m.
func (m *SingleRigidBody) JacobianOfAccWrtForce(jacForce *mat.Dense, ee int, jac *mat.Dense) {
	lever := m.eePos[ee].Sub(m.comPos)
	m.writeAngular(skew(lever), jacForce, jac)

	_, n := jacForce.Dims()
	invMass := 1 / m.params.Mass
	for i := 0; i < K3D; i++ {
		for j := 0; j < n; j++ {
			jac.Set(LX+i, j, invMass*jacForce.At(i, j))
		}
	}
}

// JacobianOfAccWrtEEPos: moving the contact point changes only the lever arm:
// ∂(p−c)×f / ∂p = −skew(f).
func (m *SingleRigidBody) JacobianOfAccWrtEEPos(jacEEPos *mat.Dense, ee int, jac *mat.Dense) {
	d := mat.NewDense(3, 3, nil)
	d.Scale(-1, skew(m.force[ee]))
	m.writeAngular(d, jacEEPos, jac)
}

// writeAngular writes I⁻¹ · d · jacIn into the angular rows of jac.
func (m *SingleRigidBody) writeAngular(d, jacIn *mat.Dense, jac *mat.Dense) {
	chain := mat.NewDense(3, 3, nil)
	chain.Mul(m.inertiaInv, d)
	_, n := jacIn.Dims()
	block := mat.NewDense(K3D, n, nil)
	block.Mul(chain, jacIn)
	for i := 0; i < K3D; i++ {
		for j := 0; j < n; j++ {
			jac.Set(AX+i, j, block.At(i, j))
		}
	}
}

var _ Model = (*SingleRigidBody)(nil)
