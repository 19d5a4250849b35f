package formulation

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/san-kum/locoplan/internal/constraints"
	"github.com/san-kum/locoplan/internal/dynamics"
	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
	"github.com/san-kum/locoplan/internal/terrain"
)

var allDims = []int{0, 1, 2}

// Factory builds the complete variable-set, constraint-set and cost
// collections for one locomotion problem. All construction-time validation
// happens here; a Factory that exists can always produce a well-formed NLP.
type Factory struct {
	params MotionParams
	robot  *dynamics.SingleRigidBody
	ground terrain.Terrain
	logger golog.Logger

	holder      *spline.Holder
	vars        []nlp.VariableSet
	forceNodes  []*spline.NodeSet
	motionNodes []*spline.NodeSet
	baseLin     *spline.NodeSet
	baseAng     *spline.NodeSet
}

func NewFactory(robot *dynamics.SingleRigidBody, ground terrain.Terrain, params MotionParams,
	initial RobotState, final BaseState, logger golog.Logger) (*Factory, error) {

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("motion parameters: %w", err)
	}
	if robot.EECount() != params.EECount {
		return nil, fmt.Errorf("robot %q has %d end-effectors, parameters specify %d",
			robot.Name(), robot.EECount(), params.EECount)
	}
	if len(initial.EEPos) != params.EECount {
		return nil, fmt.Errorf("initial state has %d end-effector positions, want %d",
			len(initial.EEPos), params.EECount)
	}

	f := &Factory{params: params, robot: robot, ground: ground, logger: logger}
	if err := f.buildVariables(initial, final); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Factory) buildVariables(initial RobotState, final BaseState) error {
	p := f.params

	baseLinSpline, err := f.buildBaseSet(nlp.VarID{Kind: nlp.BaseLin}, initial.Base.Lin, final.Lin)
	if err != nil {
		return err
	}
	f.baseLin = baseLinSpline.Nodes()

	baseAngSpline, err := f.buildBaseSet(nlp.VarID{Kind: nlp.BaseAng}, initial.Base.Ang, final.Ang)
	if err != nil {
		return err
	}
	f.baseAng = baseAngSpline.Nodes()

	motion := make([]*spline.PhaseSpline, p.EECount)
	force := make([]*spline.PhaseSpline, p.EECount)
	for ee := 0; ee < p.EECount; ee++ {
		schedule, err := spline.NewPhaseDurations(ee, p.PhaseDurations[ee], p.MinPhaseDuration)
		if err != nil {
			return err
		}
		nNodes := len(p.PhaseDurations[ee]) + 1

		motionSet := spline.NewNodeSet(nlp.VarID{Kind: nlp.EEMotion, EE: ee}, 3, nNodes)
		start := initial.EEPos[ee]
		nom := f.robot.NominalStance(ee)
		goal := r3.Vector{
			X: final.Lin.Pos[0] + nom.X,
			Y: final.Lin.Pos[1] + nom.Y,
		}
		goal.Z = f.ground.Height(goal.X, goal.Y)
		motionSet.InitializeTowardsGoal(
			[]float64{start.X, start.Y, start.Z},
			[]float64{goal.X, goal.Y, goal.Z},
			p.TotalTime)
		motionSet.AddStartBound(spline.Pos, allDims, []float64{start.X, start.Y, start.Z})
		motionSet.AddStartBound(spline.Vel, allDims, []float64{0, 0, 0})

		forceSet := spline.NewNodeSet(nlp.VarID{Kind: nlp.EEForce, EE: ee}, 3, nNodes)
		f.initForces(forceSet, schedule, ee)

		motion[ee], err = spline.NewPhaseSpline(motionSet, schedule)
		if err != nil {
			return err
		}
		force[ee], err = spline.NewPhaseSpline(forceSet, schedule)
		if err != nil {
			return err
		}

		f.motionNodes = append(f.motionNodes, motionSet)
		f.forceNodes = append(f.forceNodes, forceSet)
		f.vars = append(f.vars, motionSet, forceSet)
		if p.OptimizeDurations && schedule.Rows() > 0 {
			f.vars = append(f.vars, schedule)
		}
	}

	f.holder = spline.NewHolder(baseLinSpline, baseAngSpline, motion, force, p.FirstPhaseContact)
	return nil
}

func (f *Factory) buildBaseSet(id nlp.VarID, initial, final State3) (*spline.NodeSpline, error) {
	p := f.params
	nSegs := int(math.Round(p.TotalTime / p.BasePolyDuration))
	if nSegs < 1 {
		nSegs = 1
	}
	durations := make([]float64, nSegs)
	for i := range durations {
		durations[i] = p.TotalTime / float64(nSegs)
	}

	set := spline.NewNodeSet(id, 3, nSegs+1)
	set.InitializeTowardsGoal(initial.Pos[:], final.Pos[:], p.TotalTime)
	set.AddStartBound(spline.Pos, allDims, initial.Pos[:])
	set.AddStartBound(spline.Vel, allDims, initial.Vel[:])
	set.AddFinalBound(spline.Pos, allDims, final.Pos[:])
	set.AddFinalBound(spline.Vel, allDims, final.Vel[:])
	f.vars = append(f.vars, set)
	return spline.NewNodeSpline(set, durations)
}

// initForces seeds stance nodes with the static weight share and pins every
// swing-phase boundary node to zero force. The zero bounds are what make the
// contact schedule visible to the solver.
func (f *Factory) initForces(set *spline.NodeSet, schedule *spline.PhaseDurations, ee int) {
	p := f.params
	stanceForce := f.robot.Mass() * f.robot.G() / float64(p.EECount)
	for _, n := range set.Nodes() {
		n.Pos[2] = stanceForce
	}
	for _, dim := range allDims {
		set.AddAllBounds(spline.Pos, dim, nlp.Bounds{Lower: -p.ForceLimit, Upper: p.ForceLimit})
	}

	contact := p.FirstPhaseContact[ee]
	for phase := 0; phase < len(schedule.Durations()); phase++ {
		if !contact {
			for _, node := range []int{phase, phase + 1} {
				for _, dim := range allDims {
					set.AddBound(node, spline.Pos, dim, 0)
					set.AddBound(node, spline.Vel, dim, 0)
				}
			}
		}
		contact = !contact
	}
}

func (f *Factory) Holder() *spline.Holder           { return f.holder }
func (f *Factory) Variables() []nlp.VariableSet     { return f.vars }
func (f *Factory) Robot() *dynamics.SingleRigidBody { return f.robot }

// Constraint builds the named constraint collection, wired against the shared
// spline holder and model. An unknown name is a configuration error.
func (f *Factory) Constraint(name string) ([]nlp.ConstraintSet, error) {
	p := f.params
	switch name {
	case ConstraintDynamic:
		c, err := constraints.NewDynamic(f.robot, f.holder, p.DtDynamic)
		if err != nil {
			return nil, err
		}
		return []nlp.ConstraintSet{c}, nil

	case ConstraintRangeOfMotion:
		return f.perEE(func(ee int) (nlp.ConstraintSet, error) {
			return constraints.NewRangeOfMotion(f.robot, f.holder, ee, p.DtConstraint)
		})

	case ConstraintFriction:
		return f.perEE(func(ee int) (nlp.ConstraintSet, error) {
			return constraints.NewFriction(f.ground, f.holder, ee, p.ForceLimit, p.DtConstraint)
		})

	case ConstraintTerrain:
		return f.perEE(func(ee int) (nlp.ConstraintSet, error) {
			return constraints.NewTerrain(f.ground, f.holder, ee, p.DtConstraint)
		})

	default:
		return nil, fmt.Errorf("unknown constraint: %s", name)
	}
}

func (f *Factory) perEE(build func(ee int) (nlp.ConstraintSet, error)) ([]nlp.ConstraintSet, error) {
	out := make([]nlp.ConstraintSet, 0, f.params.EECount)
	for ee := 0; ee < f.params.EECount; ee++ {
		c, err := build(ee)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Cost builds the named cost collection. An unknown name is a configuration
// error.
func (f *Factory) Cost(cw CostWeight) ([]nlp.Cost, error) {
	switch cw.Name {
	case CostForceEffort:
		var out []nlp.Cost
		for _, set := range f.forceNodes {
			for _, dim := range allDims {
				out = append(out, constraints.NewNodeCost(cw.Name, set, spline.Pos, dim, cw.Weight))
			}
		}
		return out, nil

	case CostBaseMotion:
		var out []nlp.Cost
		for _, dim := range allDims {
			out = append(out, constraints.NewNodeCost(cw.Name, f.baseLin, spline.Vel, dim, cw.Weight))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown cost: %s", cw.Name)
	}
}

// BuildProblem assembles the full NLP from the configured constraint and cost
// names.
func (f *Factory) BuildProblem() (*nlp.Problem, error) {
	prob := nlp.NewProblem()
	for _, v := range f.vars {
		if err := prob.AddVariableSet(v); err != nil {
			return nil, err
		}
	}
	for _, name := range f.params.Constraints {
		cons, err := f.Constraint(name)
		if err != nil {
			return nil, err
		}
		for _, c := range cons {
			prob.AddConstraintSet(c)
		}
	}
	for _, cw := range f.params.Costs {
		costs, err := f.Cost(cw)
		if err != nil {
			return nil, err
		}
		for _, c := range costs {
			prob.AddCost(c)
		}
	}
	f.logger.Infow("problem assembled",
		"variables", prob.NumVariables(),
		"constraints", prob.NumConstraints(),
		"end_effectors", f.params.EECount,
	)
	return prob, nil
}
