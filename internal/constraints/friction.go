package constraints

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
	"github.com/san-kum/locoplan/internal/terrain"
)

// frictionEval keeps one end-effector's contact force unilateral and inside
// the linearized friction cone (pyramid). Five rows per instant on a flat
// terrain normal:
//
//	f_z            ∈ [0, f_max]
//	f_x ∓ μ'·f_z   ≤ 0 / ≥ 0
//	f_y ∓ μ'·f_z   ≤ 0 / ≥ 0
//
// with μ' = μ/√2 so the pyramid is inscribed in the cone.
type frictionEval struct {
	ee     int
	mu     float64
	fMax   float64
	holder *spline.Holder
}

const frictionRows = 5

func NewFriction(ground terrain.Terrain, holder *spline.Holder, ee int, fMax, dt float64) (*TimeGrid, error) {
	if ee >= holder.EECount() {
		return nil, fmt.Errorf("friction: end-effector %d out of range (%d)", ee, holder.EECount())
	}
	if fMax <= 0 {
		return nil, fmt.Errorf("friction: force limit must be positive, got %f", fMax)
	}
	eval := &frictionEval{
		ee:     ee,
		mu:     ground.FrictionCoeff() / math.Sqrt2,
		fMax:   fMax,
		holder: holder,
	}
	name := fmt.Sprintf("friction-%d", ee)
	return NewTimeGrid(name, holder.Total(), dt, frictionRows, eval)
}

func (f *frictionEval) ValuesAt(t float64, out []float64) {
	force := f.holder.EEForce[f.ee].Point(t).Pos
	fx, fy, fz := force[0], force[1], force[2]
	out[0] = fz
	out[1] = fx - f.mu*fz
	out[2] = fx + f.mu*fz
	out[3] = fy - f.mu*fz
	out[4] = fy + f.mu*fz
}

func (f *frictionEval) BoundsAt(t float64, out []nlp.Bounds) {
	out[0] = nlp.Bounds{Lower: 0, Upper: f.fMax}
	out[1] = nlp.BoundSmallerZero
	out[2] = nlp.BoundGreaterZero
	out[3] = nlp.BoundSmallerZero
	out[4] = nlp.BoundGreaterZero
}

func (f *frictionEval) JacobianAt(t float64, id nlp.VarID, jac *mat.Dense) {
	if id.EE != f.ee {
		return
	}
	_, n := jac.Dims()
	jacF := mat.NewDense(3, n, nil)

	switch id.Kind {
	case nlp.EEForce:
		f.holder.EEForce[f.ee].JacobianWrtNodes(t, spline.Pos, jacF)
	case nlp.EESchedule:
		f.holder.EEForce[f.ee].JacobianOfPosWrtDurations(t, jacF)
	default:
		return
	}

	for j := 0; j < n; j++ {
		jx, jy, jz := jacF.At(0, j), jacF.At(1, j), jacF.At(2, j)
		jac.Set(0, j, jz)
		jac.Set(1, j, jx-f.mu*jz)
		jac.Set(2, j, jx+f.mu*jz)
		jac.Set(3, j, jy-f.mu*jz)
		jac.Set(4, j, jy+f.mu*jz)
	}
}
