// Package angular maps an Euler-angle base-orientation spline into world-frame
// angular velocity and acceleration, with analytic Jacobians with respect to
// the spline's node variables.
//
// Convention, fixed for the whole module: the Euler vector is (x=roll,
// y=pitch, z=yaw) and the base-to-world rotation is R = Rz(yaw)·Ry(pitch)·
// Rx(roll). World angular velocity relates to Euler rates by ω = M·ė with
//
//	M = ⎡ cos y · cos z   −sin z   0 ⎤
//	    ⎢ cos y · sin z    cos z   0 ⎥
//	    ⎣ −sin y           0       1 ⎦
//
// and ω̇ = Ṁ·ė + M·ë. Every Jacobian below is the product rule applied to
// these two identities.
package angular

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/spline"
)

// Euler-vector dimension indices.
const (
	X = 0 // roll
	Y = 1 // pitch
	Z = 2 // yaw
)

// EulerConverter wraps a 3-dimensional Euler-angle NodeSpline.
type EulerConverter struct {
	euler *spline.NodeSpline
}

func NewEulerConverter(euler *spline.NodeSpline) (EulerConverter, error) {
	if euler.Dim() != 3 {
		return EulerConverter{}, fmt.Errorf("euler spline must be 3-dimensional, got %d", euler.Dim())
	}
	return EulerConverter{euler: euler}, nil
}

func (c EulerConverter) Spline() *spline.NodeSpline { return c.euler }

func mMatrix(p []float64) *mat.Dense {
	sy, cy := math.Sincos(p[Y])
	sz, cz := math.Sincos(p[Z])
	return mat.NewDense(3, 3, []float64{
		cy * cz, -sz, 0,
		cy * sz, cz, 0,
		-sy, 0, 1,
	})
}

func mDotMatrix(p, v []float64) *mat.Dense {
	sy, cy := math.Sincos(p[Y])
	sz, cz := math.Sincos(p[Z])
	yd, zd := v[Y], v[Z]
	return mat.NewDense(3, 3, []float64{
		-cz*sy*yd - cy*sz*zd, -cz * zd, 0,
		cy*cz*zd - sy*sz*yd, -sz * zd, 0,
		-cy * yd, 0, 0,
	})
}

// AngularVelocityInWorld returns ω(t) = M(e)·ė.
func (c EulerConverter) AngularVelocityInWorld(t float64) r3.Vector {
	s := c.euler.Point(t)
	return matVec3(mMatrix(s.Pos), s.Vel)
}

// AngularAccelerationInWorld returns ω̇(t) = Ṁ·ė + M·ë.
func (c EulerConverter) AngularAccelerationInWorld(t float64) r3.Vector {
	s := c.euler.Point(t)
	wd := matVec3(mDotMatrix(s.Pos, s.Vel), s.Vel)
	return wd.Add(matVec3(mMatrix(s.Pos), s.Acc))
}

// DerivOfAngVelWrtEulerNodes writes ∂ω(t)/∂u into jac (3 × node rows):
// ∂ω_i/∂u = Σ_j ė_j·∂M_ij/∂u + M_i·∂ė/∂u.
func (c EulerConverter) DerivOfAngVelWrtEulerNodes(t float64, jac *mat.Dense) {
	n := c.euler.Nodes().Rows()
	s := c.euler.Point(t)
	m := mMatrix(s.Pos)

	jacVel := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Vel, jacVel)

	dM := mat.NewDense(3, n, nil)
	row := make([]float64, n)
	for dim := 0; dim < 3; dim++ {
		dM.Zero()
		c.derivMWrtNodes(t, dim, dM)
		for k := range row {
			row[k] = 0
		}
		for j := 0; j < 3; j++ {
			addScaled(row, s.Vel[j], dM.RawRowView(j))
			addScaled(row, m.At(dim, j), jacVel.RawRowView(j))
		}
		jac.SetRow(dim, row)
	}
}

// DerivOfAngAccWrtEulerNodes writes ∂ω̇(t)/∂u into jac (3 × node rows). The
// acceleration couples angle values and angle rates, so four product-rule
// terms contribute per output dimension.
func (c EulerConverter) DerivOfAngAccWrtEulerNodes(t float64, jac *mat.Dense) {
	n := c.euler.Nodes().Rows()
	s := c.euler.Point(t)
	m := mMatrix(s.Pos)
	mDot := mDotMatrix(s.Pos, s.Vel)

	jacVel := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Vel, jacVel)
	jacAcc := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Acc, jacAcc)

	dM := mat.NewDense(3, n, nil)
	dMdot := mat.NewDense(3, n, nil)
	row := make([]float64, n)
	for dim := 0; dim < 3; dim++ {
		dM.Zero()
		c.derivMWrtNodes(t, dim, dM)
		dMdot.Zero()
		c.derivMDotWrtNodes(t, dim, dMdot)
		for k := range row {
			row[k] = 0
		}
		for j := 0; j < 3; j++ {
			addScaled(row, s.Vel[j], dMdot.RawRowView(j))
			addScaled(row, mDot.At(dim, j), jacVel.RawRowView(j))
			addScaled(row, s.Acc[j], dM.RawRowView(j))
			addScaled(row, m.At(dim, j), jacAcc.RawRowView(j))
		}
		jac.SetRow(dim, row)
	}
}

// derivMWrtNodes writes ∂M(dim, j)/∂u into row j of out, for the given output
// dimension (row of M).
func (c EulerConverter) derivMWrtNodes(t float64, dim int, out *mat.Dense) {
	s := c.euler.Point(t)
	sy, cy := math.Sincos(s.Pos[Y])
	sz, cz := math.Sincos(s.Pos[Z])

	n := c.euler.Nodes().Rows()
	jacPos := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Pos, jacPos)
	jacY := jacPos.RawRowView(Y)
	jacZ := jacPos.RawRowView(Z)

	switch dim {
	case X: // row (cy·cz, −sz, 0)
		addScaled(out.RawRowView(0), -sy*cz, jacY)
		addScaled(out.RawRowView(0), -cy*sz, jacZ)
		addScaled(out.RawRowView(1), -cz, jacZ)
	case Y: // row (cy·sz, cz, 0)
		addScaled(out.RawRowView(0), -sy*sz, jacY)
		addScaled(out.RawRowView(0), cy*cz, jacZ)
		addScaled(out.RawRowView(1), -sz, jacZ)
	case Z: // row (−sy, 0, 1)
		addScaled(out.RawRowView(0), -cy, jacY)
	}
}

// derivMDotWrtNodes is the same for Ṁ, which depends on both angle values and
// angle rates.
func (c EulerConverter) derivMDotWrtNodes(t float64, dim int, out *mat.Dense) {
	s := c.euler.Point(t)
	sy, cy := math.Sincos(s.Pos[Y])
	sz, cz := math.Sincos(s.Pos[Z])
	yd, zd := s.Vel[Y], s.Vel[Z]

	n := c.euler.Nodes().Rows()
	jacPos := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Pos, jacPos)
	jacVel := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Vel, jacVel)
	jacY, jacZ := jacPos.RawRowView(Y), jacPos.RawRowView(Z)
	jacYd, jacZd := jacVel.RawRowView(Y), jacVel.RawRowView(Z)

	switch dim {
	case X: // row (−cz·sy·yd − cy·sz·zd, −cz·zd, 0)
		addScaled(out.RawRowView(0), sy*sz*zd-cy*cz*yd, jacY)
		addScaled(out.RawRowView(0), sy*sz*yd-cy*cz*zd, jacZ)
		addScaled(out.RawRowView(0), -cz*sy, jacYd)
		addScaled(out.RawRowView(0), -cy*sz, jacZd)
		addScaled(out.RawRowView(1), sz*zd, jacZ)
		addScaled(out.RawRowView(1), -cz, jacZd)
	case Y: // row (cy·cz·zd − sy·sz·yd, −sz·zd, 0)
		addScaled(out.RawRowView(0), -sy*cz*zd-cy*sz*yd, jacY)
		addScaled(out.RawRowView(0), -cy*sz*zd-sy*cz*yd, jacZ)
		addScaled(out.RawRowView(0), -sy*sz, jacYd)
		addScaled(out.RawRowView(0), cy*cz, jacZd)
		addScaled(out.RawRowView(1), -cz*zd, jacZ)
		addScaled(out.RawRowView(1), -sz, jacZd)
	case Z: // row (−cy·yd, 0, 0)
		addScaled(out.RawRowView(0), sy*yd, jacY)
		addScaled(out.RawRowView(0), -cy, jacYd)
	}
}

func matVec3(m *mat.Dense, v []float64) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v[0] + m.At(0, 1)*v[1] + m.At(0, 2)*v[2],
		Y: m.At(1, 0)*v[0] + m.At(1, 1)*v[1] + m.At(1, 2)*v[2],
		Z: m.At(2, 0)*v[0] + m.At(2, 1)*v[1] + m.At(2, 2)*v[2],
	}
}

func addScaled(dst []float64, s float64, src []float64) {
	if s == 0 {
		return
	}
	for i, v := range src {
		dst[i] += s * v
	}
}
