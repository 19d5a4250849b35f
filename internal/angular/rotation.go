package angular

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/spline"
)

// RotationMatrixBaseToWorld returns R(t) = Rz(yaw)·Ry(pitch)·Rx(roll).
func (c EulerConverter) RotationMatrixBaseToWorld(t float64) *mat.Dense {
	p := c.euler.Point(t).Pos
	sx, cx := math.Sincos(p[X])
	sy, cy := math.Sincos(p[Y])
	sz, cz := math.Sincos(p[Z])
	return mat.NewDense(3, 3, []float64{
		cy * cz, cz*sx*sy - cx*sz, sx*sz + cx*cz*sy,
		cy * sz, cx*cz + sx*sy*sz, cx*sy*sz - cz*sx,
		-sy, cy * sx, cx * cy,
	})
}

// rotEntryGrad holds ∂R_ij/∂(x, y, z) for all nine entries, row-major.
func rotEntryGrad(p []float64) [3][3][3]float64 {
	sx, cx := math.Sincos(p[X])
	sy, cy := math.Sincos(p[Y])
	sz, cz := math.Sincos(p[Z])

	var g [3][3][3]float64
	// row 0
	g[0][0] = [3]float64{0, -sy * cz, -cy * sz}
	g[0][1] = [3]float64{cz*cx*sy + sx*sz, cz * sx * cy, -sz*sx*sy - cx*cz}
	g[0][2] = [3]float64{cx*sz - sx*cz*sy, cx * cz * cy, sx*cz - cx*sz*sy}
	// row 1
	g[1][0] = [3]float64{0, -sy * sz, cy * cz}
	g[1][1] = [3]float64{-sx*cz + cx*sy*sz, sx * cy * sz, -cx*sz + sx*sy*cz}
	g[1][2] = [3]float64{-sx*sy*sz - cz*cx, cx * cy * sz, cx*sy*cz + sz*sx}
	// row 2
	g[2][0] = [3]float64{0, -cy, 0}
	g[2][1] = [3]float64{cy * cx, -sy * sx, 0}
	g[2][2] = [3]float64{-sx * cy, -cx * sy, 0}
	return g
}

// DerivOfRotVecMult writes ∂(R(t)·v)/∂u into jac (3 × node rows), holding v
// fixed. With inverse set it differentiates Rᵀ·v instead; since R⁻¹ = Rᵀ this
// only swaps the entry indices.
func (c EulerConverter) DerivOfRotVecMult(t float64, v r3.Vector, inverse bool, jac *mat.Dense) {
	s := c.euler.Point(t)
	grad := rotEntryGrad(s.Pos)

	n := c.euler.Nodes().Rows()
	jacPos := mat.NewDense(3, n, nil)
	c.euler.JacobianWrtNodes(t, spline.Pos, jacPos)
	jacX := jacPos.RawRowView(X)
	jacY := jacPos.RawRowView(Y)
	jacZ := jacPos.RawRowView(Z)

	vec := [3]float64{v.X, v.Y, v.Z}
	for row := 0; row < 3; row++ {
		out := jac.RawRowView(row)
		for dim := 0; dim < 3; dim++ {
			var g [3]float64
			if inverse {
				g = grad[dim][row]
			} else {
				g = grad[row][dim]
			}
			addScaled(out, vec[dim]*g[0], jacX)
			addScaled(out, vec[dim]*g[1], jacY)
			addScaled(out, vec[dim]*g[2], jacZ)
		}
	}
}
