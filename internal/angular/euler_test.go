package angular

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
)

func randomConverter(t *testing.T, rng *rand.Rand) EulerConverter {
	t.Helper()
	set := spline.NewNodeSet(nlp.VarID{Kind: nlp.BaseAng}, 3, 3)
	x := make([]float64, set.Rows())
	for i := range x {
		x[i] = 0.6 * rng.NormFloat64()
	}
	set.SetValues(x)
	s, err := spline.NewNodeSpline(set, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("spline: %v", err)
	}
	c, err := NewEulerConverter(s)
	if err != nil {
		t.Fatalf("converter: %v", err)
	}
	return c
}

func vecAbsDiff(a, b r3.Vector) float64 {
	d := a.Sub(b)
	return math.Max(math.Abs(d.X), math.Max(math.Abs(d.Y), math.Abs(d.Z)))
}

func TestEulerConverterRejectsWrongDimension(t *testing.T) {
	set := spline.NewNodeSet(nlp.VarID{Kind: nlp.BaseAng}, 2, 2)
	s, err := spline.NewNodeSpline(set, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewEulerConverter(s); err == nil {
		t.Error("2-dimensional spline accepted")
	}
}

func TestAngularVelocityAtZeroAnglesEqualsEulerRates(t *testing.T) {
	set := spline.NewNodeSet(nlp.VarID{Kind: nlp.BaseAng}, 3, 2)
	x := make([]float64, set.Rows())
	// zero angles everywhere, distinct rates per axis
	x[set.Index(0, spline.Vel, X)] = 0.3
	x[set.Index(0, spline.Vel, Y)] = -0.2
	x[set.Index(0, spline.Vel, Z)] = 0.7
	x[set.Index(1, spline.Vel, X)] = 0.3
	x[set.Index(1, spline.Vel, Y)] = -0.2
	x[set.Index(1, spline.Vel, Z)] = 0.7
	set.SetValues(x)
	s, err := spline.NewNodeSpline(set, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewEulerConverter(s)
	if err != nil {
		t.Fatal(err)
	}

	// at identity orientation M = I, so world rates equal Euler rates
	w := c.AngularVelocityInWorld(0)
	want := r3.Vector{X: 0.3, Y: -0.2, Z: 0.7}
	if vecAbsDiff(w, want) > 1e-9 {
		t.Errorf("omega = %+v, want %+v", w, want)
	}
}

func TestAngularAccelerationIsTimeDerivativeOfVelocity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	c := randomConverter(t, rng)
	h := 1e-6

	for _, tau := range []float64{0.2, 0.55, 0.8} {
		wd := c.AngularAccelerationInWorld(tau)
		plus := c.AngularVelocityInWorld(tau + h)
		minus := c.AngularVelocityInWorld(tau - h)
		fd := plus.Sub(minus).Mul(1 / (2 * h))
		if vecAbsDiff(wd, fd) > 1e-4 {
			t.Errorf("t=%.2f: analytic %+v, finite difference %+v", tau, wd, fd)
		}
	}
}

func TestRotationMatrixIsOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	c := randomConverter(t, rng)

	r := c.RotationMatrixBaseToWorld(0.4)
	var prod mat.Dense
	prod.Mul(r.T(), r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(prod.At(i, j)-want) > 1e-9 {
				t.Errorf("RᵀR(%d,%d) = %f, want %f", i, j, prod.At(i, j), want)
			}
		}
	}
	if det := mat.Det(r); math.Abs(det-1) > 1e-9 {
		t.Errorf("det R = %f, want 1", det)
	}
}

func TestRotEntryGradMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	p := []float64{0.6 * rng.NormFloat64(), 0.6 * rng.NormFloat64(), 0.6 * rng.NormFloat64()}
	grad := rotEntryGrad(p)
	h := 1e-6

	rotAt := func(q []float64) *mat.Dense {
		sx, cx := math.Sincos(q[X])
		sy, cy := math.Sincos(q[Y])
		sz, cz := math.Sincos(q[Z])
		return mat.NewDense(3, 3, []float64{
			cy * cz, cz*sx*sy - cx*sz, sx*sz + cx*cz*sy,
			cy * sz, cx*cz + sx*sy*sz, cx*sy*sz - cz*sx,
			-sy, cy * sx, cx * cy,
		})
	}

	for axis := 0; axis < 3; axis++ {
		q := append([]float64(nil), p...)
		q[axis] += h
		plus := rotAt(q)
		q[axis] -= 2 * h
		minus := rotAt(q)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				fd := (plus.At(i, j) - minus.At(i, j)) / (2 * h)
				if math.Abs(grad[i][j][axis]-fd) > 1e-6 {
					t.Errorf("dR(%d,%d)/d%d: analytic %f, finite difference %f",
						i, j, axis, grad[i][j][axis], fd)
				}
			}
		}
	}
}

func fdNodeJacobian(c EulerConverter, tau float64, eval func(float64) r3.Vector) *mat.Dense {
	set := c.Spline().Nodes()
	base := set.Values()
	h := 1e-6
	jac := mat.NewDense(3, set.Rows(), nil)
	for col := 0; col < set.Rows(); col++ {
		x := append([]float64(nil), base...)
		x[col] += h
		set.SetValues(x)
		plus := eval(tau)
		x[col] -= 2 * h
		set.SetValues(x)
		minus := eval(tau)
		set.SetValues(base)
		d := plus.Sub(minus).Mul(1 / (2 * h))
		jac.Set(0, col, d.X)
		jac.Set(1, col, d.Y)
		jac.Set(2, col, d.Z)
	}
	return jac
}

func compareJacobians(t *testing.T, name string, got, want *mat.Dense, tol float64) {
	t.Helper()
	r, cols := got.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(got.At(i, j)-want.At(i, j)) > tol {
				t.Errorf("%s (%d,%d): analytic %f, finite difference %f",
					name, i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}

func TestDerivOfAngVelWrtEulerNodes(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	c := randomConverter(t, rng)
	n := c.Spline().Nodes().Rows()

	for _, tau := range []float64{0.15, 0.6} {
		jac := mat.NewDense(3, n, nil)
		c.DerivOfAngVelWrtEulerNodes(tau, jac)
		fd := fdNodeJacobian(c, tau, c.AngularVelocityInWorld)
		compareJacobians(t, "angular velocity", jac, fd, 1e-4)
	}
}

func TestDerivOfAngAccWrtEulerNodes(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	c := randomConverter(t, rng)
	n := c.Spline().Nodes().Rows()

	for _, tau := range []float64{0.15, 0.6} {
		jac := mat.NewDense(3, n, nil)
		c.DerivOfAngAccWrtEulerNodes(tau, jac)
		fd := fdNodeJacobian(c, tau, c.AngularAccelerationInWorld)
		compareJacobians(t, "angular acceleration", jac, fd, 1e-4)
	}
}

func TestDerivOfRotVecMult(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	c := randomConverter(t, rng)
	n := c.Spline().Nodes().Rows()
	v := r3.Vector{X: 0.4, Y: -1.1, Z: 0.8}

	for _, inverse := range []bool{false, true} {
		jac := mat.NewDense(3, n, nil)
		c.DerivOfRotVecMult(0.35, v, inverse, jac)

		eval := func(tau float64) r3.Vector {
			r := c.RotationMatrixBaseToWorld(tau)
			if inverse {
				return matVec3(mat.DenseCopyOf(r.T()), []float64{v.X, v.Y, v.Z})
			}
			return matVec3(r, []float64{v.X, v.Y, v.Z})
		}
		fd := fdNodeJacobian(c, 0.35, eval)
		compareJacobians(t, "rotated vector", jac, fd, 1e-4)
	}
}
