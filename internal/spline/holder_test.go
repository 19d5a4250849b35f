package spline

import (
	"testing"

	"github.com/san-kum/locoplan/internal/nlp"
)

func testHolder(t *testing.T, firstContact bool) *Holder {
	t.Helper()
	baseLin, err := NewNodeSpline(NewNodeSet(nlp.VarID{Kind: nlp.BaseLin}, 3, 2), []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	baseAng, err := NewNodeSpline(NewNodeSet(nlp.VarID{Kind: nlp.BaseAng}, 3, 2), []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	phases, err := NewPhaseDurations(0, []float64{0.4, 0.2, 0.4}, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	motion, err := NewPhaseSpline(NewNodeSet(nlp.VarID{Kind: nlp.EEMotion}, 3, 4), phases)
	if err != nil {
		t.Fatal(err)
	}
	force, err := NewPhaseSpline(NewNodeSet(nlp.VarID{Kind: nlp.EEForce}, 3, 4), phases)
	if err != nil {
		t.Fatal(err)
	}
	return NewHolder(baseLin, baseAng,
		[]*PhaseSpline{motion}, []*PhaseSpline{force}, []bool{firstContact})
}

func TestHolderPhaseAlternation(t *testing.T) {
	h := testHolder(t, true)
	wantContact := []bool{true, false, true}
	for phase, want := range wantContact {
		if got := h.PhaseIsContact(0, phase); got != want {
			t.Errorf("phase %d contact = %v, want %v", phase, got, want)
		}
	}

	h = testHolder(t, false)
	for phase, want := range []bool{false, true, false} {
		if got := h.PhaseIsContact(0, phase); got != want {
			t.Errorf("swing-first phase %d contact = %v, want %v", phase, got, want)
		}
	}
}

func TestHolderInContact(t *testing.T) {
	h := testHolder(t, true)
	cases := []struct {
		t    float64
		want bool
	}{
		{0, true},
		{0.3, true},
		{0.4, true}, // phase boundary belongs to the earlier phase
		{0.5, false},
		{0.7, true},
		{1.0, true},
	}
	for _, tc := range cases {
		if got := h.InContact(0, tc.t); got != tc.want {
			t.Errorf("InContact(t=%.2f) = %v, want %v", tc.t, got, tc.want)
		}
	}
	if h.Total() != 1.0 {
		t.Errorf("total = %f, want 1", h.Total())
	}
	if h.EECount() != 1 {
		t.Errorf("end-effector count = %d, want 1", h.EECount())
	}
}
