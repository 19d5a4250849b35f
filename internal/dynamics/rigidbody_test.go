package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

func testRobot(t *testing.T) *SingleRigidBody {
	t.Helper()
	m, err := NewBiped()
	if err != nil {
		t.Fatalf("biped: %v", err)
	}
	return m
}

func randVec(rng *rand.Rand) r3.Vector {
	return r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
}

func loadRandomState(t *testing.T, m *SingleRigidBody, rng *rand.Rand) (com, omega r3.Vector, force, eePos []r3.Vector) {
	t.Helper()
	com = randVec(rng)
	omega = randVec(rng)
	force = make([]r3.Vector, m.EECount())
	eePos = make([]r3.Vector, m.EECount())
	for ee := range force {
		force[ee] = randVec(rng).Mul(50)
		eePos[ee] = randVec(rng)
	}
	if err := m.SetCurrent(com, omega, force, eePos); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	return com, omega, force, eePos
}

func TestParamsValidation(t *testing.T) {
	valid := Params{
		Name:          "test",
		Mass:          1,
		Inertia:       diag(1, 1, 1),
		EECount:       1,
		NominalStance: []r3.Vector{{Z: -0.5}},
	}

	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero mass", func(p *Params) { p.Mass = 0 }},
		{"no end-effectors", func(p *Params) { p.EECount = 0; p.NominalStance = nil }},
		{"stance count mismatch", func(p *Params) { p.EECount = 2 }},
		{"singular inertia", func(p *Params) { p.Inertia = [9]float64{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			p.NominalStance = append([]r3.Vector(nil), valid.NominalStance...)
			tc.mutate(&p)
			if _, err := New(p); err == nil {
				t.Error("invalid params accepted")
			}
		})
	}

	m, err := New(valid)
	if err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	if m.G() != DefaultGravity {
		t.Errorf("gravity default = %f, want %f", m.G(), DefaultGravity)
	}
}

func TestSetCurrentRejectsWrongCounts(t *testing.T) {
	m := testRobot(t)
	one := []r3.Vector{{}}
	two := []r3.Vector{{}, {}}
	if err := m.SetCurrent(r3.Vector{}, r3.Vector{}, one, two); err == nil {
		t.Error("force count mismatch accepted")
	}
	if err := m.SetCurrent(r3.Vector{}, r3.Vector{}, two, one); err == nil {
		t.Error("position count mismatch accepted")
	}
}

// A body at rest with forces exactly cancelling its weight accelerates at +g
// in z, matching the constraint-bound convention that keeps gravity out of the
// model's linear acceleration.
func TestAccelerationUnderWeightSupport(t *testing.T) {
	m := testRobot(t)
	half := m.Mass() * m.G() / 2
	com := r3.Vector{Z: 0.58}
	force := []r3.Vector{{Z: half}, {Z: half}}
	eePos := []r3.Vector{{Y: 0.2}, {Y: -0.2}}
	if err := m.SetCurrent(com, r3.Vector{}, force, eePos); err != nil {
		t.Fatal(err)
	}

	acc := m.BaseAccelerationInWorld()
	want := []float64{0, 0, 0, 0, 0, m.G()}
	for i := range want {
		if math.Abs(acc[i]-want[i]) > 1e-9 {
			t.Errorf("acc[%d] = %f, want %f", i, acc[i], want[i])
		}
	}
}

// Equal and opposite forces at a lateral lever arm produce a pure roll torque.
func TestAccelerationForceCouple(t *testing.T) {
	m := testRobot(t)
	force := []r3.Vector{{Z: 10}, {Z: -10}}
	eePos := []r3.Vector{{Y: 0.5}, {Y: -0.5}}
	if err := m.SetCurrent(r3.Vector{}, r3.Vector{}, force, eePos); err != nil {
		t.Fatal(err)
	}

	acc := m.BaseAccelerationInWorld()
	// tau_x = 2 * 0.5m * 10N = 10 Nm, divided by Ixx = 1.2
	wantRoll := 10.0 / 1.2
	if math.Abs(acc[AX]-wantRoll) > 1e-9 {
		t.Errorf("roll acceleration = %f, want %f", acc[AX], wantRoll)
	}
	for _, i := range []int{AY, AZ, LX, LY, LZ} {
		if math.Abs(acc[i]) > 1e-9 {
			t.Errorf("acc[%d] = %f, want 0", i, acc[i])
		}
	}
}

// Finite-difference cross-checks of the four model Jacobians. Feeding the
// identity as the inner spline Jacobian makes the chained block equal the raw
// partial derivative of the acceleration w.r.t. that input.
func TestJacobianOfAccWrtBaseLin(t *testing.T) {
	m := testRobot(t)
	rng := rand.New(rand.NewSource(21))
	com, omega, force, eePos := loadRandomState(t, m, rng)

	jac := mat.NewDense(K6D, 3, nil)
	m.JacobianOfAccWrtBaseLin(eye3(), jac)

	fd := fdJacobian(t, m, func(axis int, h float64) {
		c := com
		addAxis(&c, axis, h)
		if err := m.SetCurrent(c, omega, force, eePos); err != nil {
			t.Fatal(err)
		}
	})
	restore(t, m, com, omega, force, eePos)
	compareBlocks(t, "base position", jac, fd, 1e-5)
}

func TestJacobianOfAccWrtBaseAng(t *testing.T) {
	m := testRobot(t)
	rng := rand.New(rand.NewSource(22))
	com, omega, force, eePos := loadRandomState(t, m, rng)

	jac := mat.NewDense(K6D, 3, nil)
	m.JacobianOfAccWrtBaseAng(eye3(), jac)

	fd := fdJacobian(t, m, func(axis int, h float64) {
		w := omega
		addAxis(&w, axis, h)
		if err := m.SetCurrent(com, w, force, eePos); err != nil {
			t.Fatal(err)
		}
	})
	restore(t, m, com, omega, force, eePos)
	compareBlocks(t, "angular velocity", jac, fd, 1e-5)
}

func TestJacobianOfAccWrtForce(t *testing.T) {
	m := testRobot(t)
	rng := rand.New(rand.NewSource(23))
	com, omega, force, eePos := loadRandomState(t, m, rng)

	for ee := 0; ee < m.EECount(); ee++ {
		jac := mat.NewDense(K6D, 3, nil)
		m.JacobianOfAccWrtForce(eye3(), ee, jac)

		fd := fdJacobian(t, m, func(axis int, h float64) {
			f := append([]r3.Vector(nil), force...)
			addAxis(&f[ee], axis, h)
			if err := m.SetCurrent(com, omega, f, eePos); err != nil {
				t.Fatal(err)
			}
		})
		restore(t, m, com, omega, force, eePos)
		compareBlocks(t, "contact force", jac, fd, 1e-5)
	}
}

func TestJacobianOfAccWrtEEPos(t *testing.T) {
	m := testRobot(t)
	rng := rand.New(rand.NewSource(24))
	com, omega, force, eePos := loadRandomState(t, m, rng)

	for ee := 0; ee < m.EECount(); ee++ {
		jac := mat.NewDense(K6D, 3, nil)
		m.JacobianOfAccWrtEEPos(eye3(), ee, jac)

		fd := fdJacobian(t, m, func(axis int, h float64) {
			p := append([]r3.Vector(nil), eePos...)
			addAxis(&p[ee], axis, h)
			if err := m.SetCurrent(com, omega, force, p); err != nil {
				t.Fatal(err)
			}
		})
		restore(t, m, com, omega, force, eePos)
		compareBlocks(t, "contact position", jac, fd, 1e-5)
	}
}

func TestRobotsRegistry(t *testing.T) {
	want := []string{"biped", "monoped", "quadruped"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}

	for _, name := range want {
		m, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q): %v", name, err)
			continue
		}
		if m.Name() != name {
			t.Errorf("ByName(%q).Name() = %q", name, m.Name())
		}
		if len(m.params.NominalStance) != m.EECount() {
			t.Errorf("%s: stance count %d for %d end-effectors",
				name, len(m.params.NominalStance), m.EECount())
		}
	}

	if _, err := ByName("hexapod"); err == nil {
		t.Error("unknown robot accepted")
	}
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func addAxis(v *r3.Vector, axis int, h float64) {
	switch axis {
	case 0:
		v.X += h
	case 1:
		v.Y += h
	case 2:
		v.Z += h
	}
}

// fdJacobian central-differences the base acceleration over the three axes of
// one input, using perturb to load the shifted state into the model.
func fdJacobian(t *testing.T, m *SingleRigidBody, perturb func(axis int, h float64)) *mat.Dense {
	t.Helper()
	const h = 1e-6
	fd := mat.NewDense(K6D, 3, nil)
	for axis := 0; axis < 3; axis++ {
		perturb(axis, h)
		plus := m.BaseAccelerationInWorld()
		perturb(axis, -h)
		minus := m.BaseAccelerationInWorld()
		for i := 0; i < K6D; i++ {
			fd.Set(i, axis, (plus[i]-minus[i])/(2*h))
		}
	}
	return fd
}

func restore(t *testing.T, m *SingleRigidBody, com, omega r3.Vector, force, eePos []r3.Vector) {
	t.Helper()
	if err := m.SetCurrent(com, omega, force, eePos); err != nil {
		t.Fatal(err)
	}
}

func compareBlocks(t *testing.T, name string, got, want *mat.Dense, tol float64) {
	t.Helper()
	r, c := got.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(got.At(i, j)-want.At(i, j)) > tol {
				t.Errorf("%s (%d,%d): analytic %f, finite difference %f",
					name, i, j, got.At(i, j), want.At(i, j))
			}
		}
	}
}
