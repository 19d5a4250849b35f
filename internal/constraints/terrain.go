package constraints

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
	"github.com/san-kum/locoplan/internal/terrain"
)

// terrainEval ties one end-effector's height to the ground: during stance the
// foot sits exactly on the terrain, during swing it must stay at or above it.
// One row per instant, g = p_ee.z − h(p_ee.x, p_ee.y).
//
// The contact state per instant is frozen at construction from the initial
// phase schedule so the row bounds stay stable across solver iterations.
type terrainEval struct {
	ee     int
	ground terrain.Terrain
	holder *spline.Holder

	contact map[float64]bool
}

func NewTerrain(ground terrain.Terrain, holder *spline.Holder, ee int, dt float64) (*TimeGrid, error) {
	if ee >= holder.EECount() {
		return nil, fmt.Errorf("terrain: end-effector %d out of range (%d)", ee, holder.EECount())
	}
	eval := &terrainEval{
		ee:      ee,
		ground:  ground,
		holder:  holder,
		contact: make(map[float64]bool),
	}
	name := fmt.Sprintf("terrain-%d", ee)
	grid, err := NewTimeGrid(name, holder.Total(), dt, 1, eval)
	if err != nil {
		return nil, err
	}
	for _, t := range grid.Times() {
		eval.contact[t] = holder.InContact(ee, t)
	}
	return grid, nil
}

func (e *terrainEval) ValuesAt(t float64, out []float64) {
	p := e.holder.EEMotion[e.ee].Point(t).Pos
	out[0] = p[2] - e.ground.Height(p[0], p[1])
}

func (e *terrainEval) BoundsAt(t float64, out []nlp.Bounds) {
	if e.contact[t] {
		out[0] = nlp.BoundZero
	} else {
		out[0] = nlp.BoundGreaterZero
	}
}

// JacobianAt assumes locally flat terrain: the height gradient w.r.t. the
// ground-plane coordinates is zero, so only the z row of the motion Jacobian
// survives.
func (e *terrainEval) JacobianAt(t float64, id nlp.VarID, jac *mat.Dense) {
	if id.EE != e.ee {
		return
	}
	_, n := jac.Dims()
	jacP := mat.NewDense(3, n, nil)

	switch id.Kind {
	case nlp.EEMotion:
		e.holder.EEMotion[e.ee].JacobianWrtNodes(t, spline.Pos, jacP)
	case nlp.EESchedule:
		e.holder.EEMotion[e.ee].JacobianOfPosWrtDurations(t, jacP)
	default:
		return
	}
	for j := 0; j < n; j++ {
		jac.Set(0, j, jacP.At(2, j))
	}
}
