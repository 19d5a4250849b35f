package spline

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
)

func makePhaseSpline(t *testing.T, rng *rand.Rand, dim int, durations []float64) *PhaseSpline {
	t.Helper()
	phases, err := NewPhaseDurations(0, durations, 0.05)
	if err != nil {
		t.Fatalf("phase durations: %v", err)
	}
	set := NewNodeSet(nlp.VarID{Kind: nlp.EEMotion}, dim, len(durations)+1)
	x := make([]float64, set.Rows())
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	set.SetValues(x)
	s, err := NewPhaseSpline(set, phases)
	if err != nil {
		t.Fatalf("phase spline: %v", err)
	}
	return s
}

func TestPhaseDurationsLastPhaseAbsorbsRest(t *testing.T) {
	p, err := NewPhaseDurations(0, []float64{0.4, 0.2, 0.4}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", p.Rows())
	}
	p.SetValues([]float64{0.3, 0.3})
	d := p.Durations()
	if math.Abs(d[2]-0.4) > 1e-12 {
		t.Errorf("dependent phase = %f, want 0.4", d[2])
	}
	sum := d[0] + d[1] + d[2]
	if math.Abs(sum-p.Total()) > 1e-12 {
		t.Errorf("durations sum to %f, want %f", sum, p.Total())
	}
}

func TestPhaseDurationsDependentPhaseClamped(t *testing.T) {
	p, err := NewPhaseDurations(0, []float64{0.5, 0.5}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	p.SetValues([]float64{1.5})
	if last := p.Durations()[1]; last <= 0 {
		t.Errorf("dependent phase %f must stay positive", last)
	}
}

func TestPhaseDurationsSinglePhaseHasNoVariables(t *testing.T) {
	p, err := NewPhaseDurations(0, []float64{1.0}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if p.Rows() != 0 {
		t.Errorf("single-phase schedule exposes %d variables, want 0", p.Rows())
	}
}

func TestPhaseDurationsRejectsInvalid(t *testing.T) {
	if _, err := NewPhaseDurations(0, nil, 0.05); err == nil {
		t.Error("empty schedule accepted")
	}
	if _, err := NewPhaseDurations(0, []float64{0.4, -0.1}, 0.05); err == nil {
		t.Error("negative duration accepted")
	}
}

func TestPhaseSplineSyncsWithDurations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := makePhaseSpline(t, rng, 1, []float64{0.4, 0.2, 0.4})

	s.Phases().SetValues([]float64{0.5, 0.3})
	got := s.Durations()
	want := []float64{0.5, 0.3, 0.2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("segment %d duration = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPhaseSplineJacobianWrtDurations(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	s := makePhaseSpline(t, rng, 2, []float64{0.4, 0.2, 0.4})
	phases := s.Phases()
	h := 1e-6

	// stay clear of phase boundaries so the containing segment is stable
	// under the perturbation
	for _, tau := range []float64{0.1, 0.5, 0.85} {
		jac := mat.NewDense(2, phases.Rows(), nil)
		s.JacobianOfPosWrtDurations(tau, jac)

		base := phases.Values()
		for col := 0; col < phases.Rows(); col++ {
			x := append([]float64(nil), base...)
			x[col] += h
			phases.SetValues(x)
			plus := s.Point(tau).Pos

			x[col] -= 2 * h
			phases.SetValues(x)
			minus := s.Point(tau).Pos

			phases.SetValues(base)
			for dim := 0; dim < 2; dim++ {
				fd := (plus[dim] - minus[dim]) / (2 * h)
				if math.Abs(jac.At(dim, col)-fd) > 1e-4 {
					t.Errorf("t=%.2f (%d,%d): analytic %f, finite difference %f",
						tau, dim, col, jac.At(dim, col), fd)
				}
			}
		}
	}
}

// A query time that falls exactly on a phase boundary resolves to the
// earlier segment, and the duration Jacobian there still agrees with finite
// differences: the spline position stays continuous in the durations even
// when the perturbation moves the boundary across the query time.
func TestPhaseSplineBoundaryBelongsToEarlierPhase(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	s := makePhaseSpline(t, rng, 2, []float64{0.4, 0.2, 0.4})
	phases := s.Phases()
	h := 1e-6

	for i, tc := range []struct {
		tau     float64
		segment int
	}{
		{0.4, 0},
		{0.6, 1},
	} {
		id, local := s.segmentAt(tc.tau)
		if id != tc.segment {
			t.Errorf("case %d: t=%.2f resolves to segment %d, want %d", i, tc.tau, id, tc.segment)
		}
		if math.Abs(local-s.Durations()[id]) > 1e-12 {
			t.Errorf("case %d: local time %f, want end of segment %f", i, local, s.Durations()[id])
		}

		jac := mat.NewDense(2, phases.Rows(), nil)
		s.JacobianOfPosWrtDurations(tc.tau, jac)

		base := phases.Values()
		for col := 0; col < phases.Rows(); col++ {
			x := append([]float64(nil), base...)
			x[col] += h
			phases.SetValues(x)
			plus := s.Point(tc.tau).Pos

			x[col] -= 2 * h
			phases.SetValues(x)
			minus := s.Point(tc.tau).Pos

			phases.SetValues(base)
			for dim := 0; dim < 2; dim++ {
				fd := (plus[dim] - minus[dim]) / (2 * h)
				if math.Abs(jac.At(dim, col)-fd) > 1e-4 {
					t.Errorf("t=%.2f (%d,%d): analytic %f, finite difference %f",
						tc.tau, dim, col, jac.At(dim, col), fd)
				}
			}
		}
	}
}
