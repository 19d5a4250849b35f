package solver

import (
	"math"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/san-kum/locoplan/internal/dynamics"
	"github.com/san-kum/locoplan/internal/formulation"
	"github.com/san-kum/locoplan/internal/terrain"
)

// End-to-end solve of the standing scenario: a monoped holding a single
// stance phase over the whole horizon, goal equal to start. At the optimum
// the dynamic constraint holds on every grid instant, so the linear-z row
// equals gravity and the other five rows vanish.
func TestSolveStandingScenario(t *testing.T) {
	robot, err := dynamics.NewMonoped()
	if err != nil {
		t.Fatal(err)
	}
	params := formulation.DefaultParams(1, 1.0)
	params.PhaseDurations = [][]float64{{1.0}}
	initial := formulation.StandingState(r3.Vector{Z: 0.58}, []r3.Vector{robot.NominalStance(0)})
	final := formulation.BaseState{Lin: formulation.State3{Pos: [3]float64{0, 0, 0.58}}}

	logger := golog.NewTestLogger(t)
	factory, err := formulation.NewFactory(robot, terrain.NewFlatGround(), params, initial, final, logger)
	if err != nil {
		t.Fatal(err)
	}
	prob, err := factory.BuildProblem()
	if err != nil {
		t.Fatal(err)
	}

	result, err := NewSolver(logger, DefaultOptions()).Solve(prob)
	if err != nil {
		if strings.Contains(err.Error(), "nlopt creation") {
			t.Skipf("nlopt backend unavailable: %v", err)
		}
		t.Fatal(err)
	}
	if result.Evaluations == 0 {
		t.Fatal("solver finished without evaluating the problem")
	}

	// Solve leaves the optimized values in the variable sets, so a fresh
	// dynamic constraint reads the solved trajectory.
	sets, err := factory.Constraint(formulation.ConstraintDynamic)
	if err != nil {
		t.Fatal(err)
	}
	const tol = 1e-4
	for _, cons := range sets {
		values := cons.Values()
		for k := 0; k < len(values)/dynamics.K6D; k++ {
			off := k * dynamics.K6D
			for i := 0; i < dynamics.K6D; i++ {
				want := 0.0
				if i == dynamics.LZ {
					want = robot.G()
				}
				if math.Abs(values[off+i]-want) > tol {
					t.Errorf("instant %d row %d = %f, want %f", k, i, values[off+i], want)
				}
			}
		}
	}
}
