package constraints

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/locoplan/internal/angular"
	"github.com/san-kum/locoplan/internal/dynamics"
	"github.com/san-kum/locoplan/internal/nlp"
	"github.com/san-kum/locoplan/internal/spline"
)

// romEval keeps one end-effector inside its kinematic reachability box. The
// box is axis-aligned in the base frame around the nominal stance, so the
// foot position is rotated back with Rᵀ before bounding: three rows per
// instant, g = Rᵀ·(p_ee − p_base).
type romEval struct {
	ee      int
	nominal r3.Vector
	maxDev  r3.Vector
	holder  *spline.Holder
	baseLin *spline.NodeSpline
	baseAng angular.EulerConverter
}

func NewRangeOfMotion(robot *dynamics.SingleRigidBody, holder *spline.Holder, ee int, dt float64) (*TimeGrid, error) {
	if ee >= holder.EECount() {
		return nil, fmt.Errorf("range-of-motion: end-effector %d out of range (%d)", ee, holder.EECount())
	}
	conv, err := angular.NewEulerConverter(holder.BaseAngular)
	if err != nil {
		return nil, err
	}
	eval := &romEval{
		ee:      ee,
		nominal: robot.NominalStance(ee),
		maxDev:  robot.MaxDeviation(),
		holder:  holder,
		baseLin: holder.BaseLinear,
		baseAng: conv,
	}
	name := fmt.Sprintf("range-of-motion-%d", ee)
	return NewTimeGrid(name, holder.Total(), dt, dynamics.K3D, eval)
}

func (r *romEval) posBaseToEEWorld(t float64) r3.Vector {
	base := toVec(r.baseLin.Point(t).Pos)
	eePos := toVec(r.holder.EEMotion[r.ee].Point(t).Pos)
	return eePos.Sub(base)
}

func (r *romEval) ValuesAt(t float64, out []float64) {
	rot := r.baseAng.RotationMatrixBaseToWorld(t)
	d := r.posBaseToEEWorld(t)
	// Rᵀ·d
	out[0] = rot.At(0, 0)*d.X + rot.At(1, 0)*d.Y + rot.At(2, 0)*d.Z
	out[1] = rot.At(0, 1)*d.X + rot.At(1, 1)*d.Y + rot.At(2, 1)*d.Z
	out[2] = rot.At(0, 2)*d.X + rot.At(1, 2)*d.Y + rot.At(2, 2)*d.Z
}

func (r *romEval) BoundsAt(t float64, out []nlp.Bounds) {
	nom := [3]float64{r.nominal.X, r.nominal.Y, r.nominal.Z}
	dev := [3]float64{r.maxDev.X, r.maxDev.Y, r.maxDev.Z}
	for i := 0; i < 3; i++ {
		out[i] = nlp.Bounds{Lower: nom[i] - dev[i], Upper: nom[i] + dev[i]}
	}
}

func (r *romEval) JacobianAt(t float64, id nlp.VarID, jac *mat.Dense) {
	_, n := jac.Dims()
	rot := r.baseAng.RotationMatrixBaseToWorld(t)

	switch id.Kind {
	case nlp.BaseLin:
		jacPos := mat.NewDense(3, n, nil)
		r.baseLin.JacobianWrtNodes(t, spline.Pos, jacPos)
		jac.Mul(rot.T(), jacPos)
		jac.Scale(-1, jac)

	case nlp.BaseAng:
		r.baseAng.DerivOfRotVecMult(t, r.posBaseToEEWorld(t), true, jac)

	case nlp.EEMotion:
		if id.EE != r.ee {
			return
		}
		jacEE := mat.NewDense(3, n, nil)
		r.holder.EEMotion[r.ee].JacobianWrtNodes(t, spline.Pos, jacEE)
		jac.Mul(rot.T(), jacEE)

	case nlp.EESchedule:
		if id.EE != r.ee {
			return
		}
		jacT := mat.NewDense(3, n, nil)
		r.holder.EEMotion[r.ee].JacobianOfPosWrtDurations(t, jacT)
		jac.Mul(rot.T(), jacT)
	}
}
